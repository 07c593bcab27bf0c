// seed_tasks.go registers upstream optimization runs with a Frontier server.
//
// The input has one run per line: "<upstream_id> [industry] [name...]".
// Blank lines and lines starting with # are ignored.
//
// Usage:
//
//	go run scripts/seed_tasks.go -file runs.txt -api http://localhost:8700 -token $ADMIN_TOKEN
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
)

type taskRequest struct {
	UpstreamID string `json:"upstream_id"`
	Name       string `json:"name,omitempty"`
	Industry   string `json:"industry,omitempty"`
}

func main() {
	path := flag.String("file", "runs.txt", "file listing upstream runs")
	apiURL := flag.String("api", "http://localhost:8700", "Frontier API base URL")
	token := flag.String("token", os.Getenv("ADMIN_TOKEN"), "admin bearer token")
	dryRun := flag.Bool("dry-run", false, "print runs without posting")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open %s: %v", *path, err)
	}
	defer f.Close()

	var runs []taskRequest
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		run := taskRequest{UpstreamID: fields[0]}
		if len(fields) > 1 {
			run.Industry = strings.ToLower(fields[1])
		}
		if len(fields) > 2 {
			run.Name = strings.Join(fields[2:], " ")
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("scan %s: %v", *path, err)
	}

	log.Printf("parsed %d runs from %s", len(runs), *path)

	if *dryRun {
		for i, run := range runs {
			fmt.Printf("[%d] %s (industry=%s, name=%q)\n", i+1, run.UpstreamID, run.Industry, run.Name)
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for _, run := range runs {
		body, _ := json.Marshal(run)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/tasks", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s: %v", run.UpstreamID, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s: %v", run.UpstreamID, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip %s: status %d", run.UpstreamID, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}

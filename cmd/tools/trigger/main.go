package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// trigger asks a running server for a new search and waits until the batch
// has been committed.
func main() {
	base := flag.String("server", "http://localhost:8081", "Server base URL")
	term := flag.String("q", "", "Search term")
	category := flag.String("category", "", "Category filter")
	wait := flag.Duration("wait", 2*time.Minute, "How long to wait for the batch")
	flag.Parse()

	body, _ := json.Marshal(map[string]string{"searchTerm": *term, "category": *category})
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Post(*base+"/api/v1/opportunities/search", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	var started struct {
		Seq uint64 `json:"seq"`
	}
	err = json.NewDecoder(resp.Body).Decode(&started)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted || err != nil {
		fmt.Printf("Response Status: %s\n", resp.Status)
		os.Exit(1)
	}
	fmt.Printf("Search started (seq %d)\n", started.Seq)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		time.Sleep(time.Second)

		resp, err := client.Get(*base + "/api/v1/opportunities/state")
		if err != nil {
			fmt.Printf("Error polling state: %v\n", err)
			continue
		}
		var state struct {
			Seq           uint64            `json:"seq"`
			State         string            `json:"state"`
			Loading       bool              `json:"isLoading"`
			Error         string            `json:"error"`
			Opportunities []json.RawMessage `json:"opportunities"`
		}
		err = json.NewDecoder(resp.Body).Decode(&state)
		resp.Body.Close()
		if err != nil {
			fmt.Printf("Error decoding state: %v\n", err)
			continue
		}
		if state.Seq < started.Seq || state.Loading {
			continue
		}
		if state.Seq > started.Seq {
			fmt.Printf("Superseded by a newer search (seq %d)\n", state.Seq)
			os.Exit(1)
		}

		fmt.Printf("State: %s, %d opportunities\n", state.State, len(state.Opportunities))
		if state.Error != "" {
			fmt.Printf("Error: %s\n", state.Error)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Timed out waiting for the batch")
	os.Exit(1)
}

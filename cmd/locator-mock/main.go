package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

type locationEntry struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

func main() {
	var (
		port    = flag.String("port", "9098", "port to listen on")
		data    = flag.String("data", "mock-locations.json", "path to mock data file")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload map[string]locationEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/locations", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		entry, ok := payload[key]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if *verbose {
			log.Printf("resolved %q -> %q", key, entry.Name)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock locator listening on %s (%d entries)", addr, len(payload))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

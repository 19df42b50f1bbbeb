package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

var (
	Version = "v1.0.0"
)

func usage() {
	fmt.Println("Usage: forecastgate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate [-segment s] [-type t] [-days n] [-location id]   request a prediction")
	fmt.Println("  status                                                     show limiter and cache state")
	fmt.Println("  reset                                                      reset the session quota")
	fmt.Println("  invalidate                                                 drop all cached results")
	os.Exit(1)
}

func baseURL() string {
	if v := os.Getenv("FORECASTGATE_ADDR"); v != "" {
		return "http://" + v
	}
	return "http://127.0.0.1:8091"
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "generate":
		cmdGenerate(os.Args[2:])
	case "status":
		cmdGet("/v1/predictions/status")
	case "reset":
		cmdPost("/v1/quota/reset", nil)
	case "invalidate":
		cmdPost("/v1/cache/invalidate", nil)
	default:
		usage()
	}
}

func cmdGenerate(args []string) {
	flagSet := flag.NewFlagSet("generate", flag.ExitOnError)
	segment := flagSet.String("segment", "all", "segment scope: retail|wholesale|combined|all")
	predType := flagSet.String("type", "all", "prediction type: sales|capacity|stock|all")
	days := flagSet.Int("days", 7, "forecast horizon in days (1-30)")
	location := flagSet.String("location", "", "location identifier")
	flagSet.Parse(args)

	payload := map[string]any{
		"segment_scope": *segment,
		"type_scope":    *predType,
		"forecast_days": *days,
	}
	if *location != "" {
		payload["location_id"] = *location
	}
	cmdPost("/v1/predictions", payload)
}

func cmdGet(path string) {
	resp, err := http.Get(baseURL() + path)
	if err != nil {
		fmt.Printf("Error contacting daemon: %v\n", err)
		fmt.Println("Is forecastgate-d running?")
		os.Exit(1)
	}
	printResponse(resp)
}

func cmdPost(path string, payload any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	resp, err := http.Post(baseURL()+path, "application/json", body)
	if err != nil {
		fmt.Printf("Error contacting daemon: %v\n", err)
		fmt.Println("Is forecastgate-d running?")
		os.Exit(1)
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

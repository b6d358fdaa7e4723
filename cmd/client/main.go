package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	api "gitlab.com/symplylade/portfolio-api/pkg/model"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8000
//
// Every POST stores a message and triggers an email, so point this at a service whose SMTP
// settings go nowhere.
func main() {
	baseURL := flag.String("url", "http://localhost:8000", "base URL of the portfolio API")
	flag.Parse()

	fmt.Println()
	fmt.Println("  Requests   POST /contact   GET /projects   GET / ")
	fmt.Println("---------------------------------------------------")
	name, email, phone, message := "Marcus Antonius", "marcus@example.com", "+39 999 777 555", "Ave!"
	jsonBody, err := json.Marshal(api.ContactSubmission{Name: &name, Email: &email, Phone: &phone, Message: &message})
	if err != nil {
		panic(err)
	}
	sizes := []int{100, 500, 1000, 5000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		{
			// POST requests
			f := func() int64 {
				return sendContact(*baseURL, jsonBody)
			}
			callInLoop(loops, 16, f)
		}
		{
			// GET /projects requests
			f := func() int64 {
				return sendGetProjects(*baseURL)
			}
			callInLoop(loops, 16, f)
		}
		{
			// GET / requests
			f := func() int64 {
				_, d := sendRequest(http.MethodGet, *baseURL+"/", nil)
				return d
			}
			callInLoop(loops, 8, f)
		}
		fmt.Println()
	}
}

// callInLoop runs f loops times and prints the average duration in microseconds.
func callInLoop(loops int, width int, f func() int64) {
	var duration int64
	for i := 0; i < loops; i++ {
		duration += f()
	}
	fmt.Printf("%*d", width, duration/int64(loops*1000))
}

func sendContact(baseURL string, body []byte) int64 {
	resBody, duration := sendRequest(http.MethodPost, baseURL+"/contact", bytes.NewReader(body))
	var ack api.Acknowledgment
	if err := json.Unmarshal(resBody, &ack); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	if !ack.Success {
		panic("contact message was not acknowledged: " + string(resBody))
	}
	return duration
}

func sendGetProjects(baseURL string) int64 {
	resBody, duration := sendRequest(http.MethodGet, baseURL+"/projects", nil)
	var projects []api.Project
	if err := json.Unmarshal(resBody, &projects); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return resBody, after - before
}

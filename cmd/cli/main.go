package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"ticket-admin-service/api/dto"
)

// Small admin companion for the ticket service: seed records, inspect them
// and trigger batch name resolution from a shell.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	base := strings.TrimRight(*addr, "/")

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	switch cmd {
	case "get":
		cmdGet(client, base, args)
	case "put":
		cmdPut(client, base, args)
	case "delete":
		cmdDelete(client, base, args)
	case "resolve":
		cmdResolve(client, base, args)
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cli [-addr url] <command> [options]")
	fmt.Fprintln(os.Stderr, "commands: get, put, delete, resolve")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printBody(resp *http.Response) {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		fmt.Fprintf(os.Stderr, "%s: %s\n", resp.Status, strings.TrimSpace(string(body)))
		os.Exit(1)
	}
	if len(body) > 0 {
		fmt.Println(strings.TrimSpace(string(body)))
	}
}

func ticketURL(base, id string) string {
	return fmt.Sprintf("%s/api/tickets/%s", base, url.PathEscape(id))
}

func cmdGet(client *http.Client, base string, args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	id := fs.String("id", "", "ticket id")
	_ = fs.Parse(args)
	if *id == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := client.Get(ticketURL(base, *id))
	if err != nil {
		fail(err)
	}
	printBody(resp)
}

func cmdPut(client *http.Client, base string, args []string) {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	id := fs.String("id", "", "ticket id")
	franchise := fs.String("franchise", "", "franchise id")
	outlet := fs.String("outlet", "", "outlet id")
	franchiseName := fs.String("franchise-name", "", "resolved franchise name (optional)")
	outletName := fs.String("outlet-name", "", "resolved outlet name (optional)")
	_ = fs.Parse(args)
	if *id == "" {
		fs.Usage()
		os.Exit(1)
	}

	rec := dto.TicketRecord{
		ID:            *id,
		FranchiseID:   *franchise,
		OutletID:      *outlet,
		FranchiseName: *franchiseName,
		OutletName:    *outletName,
	}
	body, err := json.Marshal(rec)
	if err != nil {
		fail(err)
	}

	req, err := http.NewRequest(http.MethodPut, ticketURL(base, *id), bytes.NewReader(body))
	if err != nil {
		fail(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fail(err)
	}
	printBody(resp)
}

func cmdDelete(client *http.Client, base string, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "ticket id")
	_ = fs.Parse(args)
	if *id == "" {
		fs.Usage()
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodDelete, ticketURL(base, *id), nil)
	if err != nil {
		fail(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		fail(err)
	}
	printBody(resp)
}

func cmdResolve(client *http.Client, base string, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cli resolve <id> [id...]")
		os.Exit(1)
	}

	body, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		fail(err)
	}

	resp, err := client.Post(base+"/api/tickets/batch/resolve", "application/json", bytes.NewReader(body))
	if err != nil {
		fail(err)
	}
	printBody(resp)
}

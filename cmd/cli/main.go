package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "user":
		handleUser(args)
	case "tool":
		handleTool(args)
	case "borrow":
		borrowTool(args)
	case "return":
		returnTool(args)
	case "txn":
		handleTxn(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`toolshare - peer-to-peer tool lending registry

Usage:
  toolshare user create|list|get|delete ...
  toolshare tool add|list|available|get|delete ...
  toolshare borrow -user <id> -tool <id>
  toolshare return -txn <id>
  toolshare txn list|get|delete ...

The server address comes from TOOLSHARE_ADDR (default http://localhost:8080).`)
}

func serverAddr() string {
	if addr := os.Getenv("TOOLSHARE_ADDR"); addr != "" {
		return addr
	}
	return "http://localhost:8080"
}

// result mirrors the API envelope
type result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func call(method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, serverAddr()+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%s", res.Error)
	}
	return res.Data, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

type userView struct {
	UserID        string   `json:"userId"`
	Username      string   `json:"username"`
	ContactInfo   string   `json:"contactInfo"`
	ToolsOwned    []string `json:"toolsOwned"`
	ToolsBorrowed []string `json:"toolsBorrowed"`
}

type toolView struct {
	ToolID       string `json:"toolId"`
	OwnerID      string `json:"ownerId"`
	ToolName     string `json:"toolName"`
	Condition    string `json:"condition"`
	Availability bool   `json:"availability"`
}

type txnView struct {
	TransactionID string `json:"transactionId"`
	ToolID        string `json:"toolId"`
	BorrowerID    string `json:"borrowerId"`
	Status        string `json:"status"`
	BorrowDate    string `json:"borrowDate"`
}

func handleUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: toolshare user <create|list|get|delete>")
		return
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		username := fs.String("name", "", "username")
		contact := fs.String("contact", "", "contact info")
		fs.Parse(args[1:])

		data, err := call(http.MethodPost, "/api/users", map[string]string{
			"username":    *username,
			"contactInfo": *contact,
		})
		if err != nil {
			fatal(err)
		}
		var u userView
		json.Unmarshal(data, &u)
		fmt.Printf("created user %s\n", u.UserID)

	case "list":
		data, err := call(http.MethodGet, "/api/users", nil)
		if err != nil {
			fatal(err)
		}
		var users []userView
		json.Unmarshal(data, &users)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tOWNED\tBORROWED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", u.UserID, u.Username, len(u.ToolsOwned), len(u.ToolsBorrowed))
		}
		w.Flush()

	case "get":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: toolshare user get <id>"))
		}
		data, err := call(http.MethodGet, "/api/users/"+args[1], nil)
		if err != nil {
			fatal(err)
		}
		printJSON(data)

	case "delete":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: toolshare user delete <id>"))
		}
		if _, err := call(http.MethodDelete, "/api/users/"+args[1], nil); err != nil {
			fatal(err)
		}
		fmt.Println("user deleted")

	default:
		fmt.Printf("unknown user command: %s\n", args[0])
	}
}

func handleTool(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: toolshare tool <add|list|available|get|delete>")
		return
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("tool add", flag.ExitOnError)
		owner := fs.String("owner", "", "owner user id")
		name := fs.String("name", "", "tool name")
		desc := fs.String("desc", "", "description")
		condition := fs.String("condition", "good", "condition")
		fs.Parse(args[1:])

		data, err := call(http.MethodPost, "/api/tools", map[string]string{
			"ownerId":     *owner,
			"toolName":    *name,
			"description": *desc,
			"condition":   *condition,
		})
		if err != nil {
			fatal(err)
		}
		var t toolView
		json.Unmarshal(data, &t)
		fmt.Printf("listed tool %s\n", t.ToolID)

	case "list", "available":
		path := "/api/tools"
		if args[0] == "available" {
			path = "/api/tools/available"
		}
		data, err := call(http.MethodGet, path, nil)
		if err != nil {
			fatal(err)
		}
		var tools []toolView
		json.Unmarshal(data, &tools)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCONDITION\tAVAILABLE\tOWNER")
		for _, t := range tools {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", t.ToolID, t.ToolName, t.Condition, t.Availability, t.OwnerID)
		}
		w.Flush()

	case "get":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: toolshare tool get <id>"))
		}
		data, err := call(http.MethodGet, "/api/tools/"+args[1], nil)
		if err != nil {
			fatal(err)
		}
		printJSON(data)

	case "delete":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: toolshare tool delete <id>"))
		}
		if _, err := call(http.MethodDelete, "/api/tools/"+args[1], nil); err != nil {
			fatal(err)
		}
		fmt.Println("tool deleted")

	default:
		fmt.Printf("unknown tool command: %s\n", args[0])
	}
}

func borrowTool(args []string) {
	fs := flag.NewFlagSet("borrow", flag.ExitOnError)
	user := fs.String("user", "", "borrower user id")
	tool := fs.String("tool", "", "tool id")
	fs.Parse(args)

	data, err := call(http.MethodPost, "/api/transactions", map[string]string{
		"borrowerId": *user,
		"toolId":     *tool,
	})
	if err != nil {
		fatal(err)
	}
	var t txnView
	json.Unmarshal(data, &t)
	fmt.Printf("borrowed: transaction %s\n", t.TransactionID)
}

func returnTool(args []string) {
	fs := flag.NewFlagSet("return", flag.ExitOnError)
	txn := fs.String("txn", "", "transaction id")
	fs.Parse(args)

	data, err := call(http.MethodPost, "/api/transactions/"+*txn+"/return", nil)
	if err != nil {
		fatal(err)
	}
	var res struct {
		Message string `json:"message"`
	}
	json.Unmarshal(data, &res)
	fmt.Println(res.Message)
}

func handleTxn(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: toolshare txn <list|get|delete>")
		return
	}

	switch args[0] {
	case "list":
		data, err := call(http.MethodGet, "/api/transactions", nil)
		if err != nil {
			fatal(err)
		}
		var txns []txnView
		json.Unmarshal(data, &txns)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tBORROWER\tSTATUS\tBORROWED")
		for _, t := range txns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.TransactionID, t.ToolID, t.BorrowerID, t.Status, t.BorrowDate)
		}
		w.Flush()

	case "get":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: toolshare txn get <id>"))
		}
		data, err := call(http.MethodGet, "/api/transactions/"+args[1], nil)
		if err != nil {
			fatal(err)
		}
		printJSON(data)

	case "delete":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: toolshare txn delete <id>"))
		}
		if _, err := call(http.MethodDelete, "/api/transactions/"+args[1], nil); err != nil {
			fatal(err)
		}
		fmt.Println("transaction deleted")

	default:
		fmt.Printf("unknown txn command: %s\n", args[0])
	}
}

func printJSON(data json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(buf.String())
}

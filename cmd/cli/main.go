package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
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
	case "auth":
		handleAuth(args)
	case "companies":
		handleCompanies(args)
	case "team":
		handleTeam(args)
	case "settings":
		handleSettings(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink auth <login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleCompanies(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink companies <list|review|approve|activate|suspend|reactivate|set-role|reset-password|export>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listCompanies(args[1:])
	case "review":
		setStatus(args[1:], "pending_approval", "move the access request into review")
	case "approve":
		setStatus(args[1:], "waiting_payment", "approve the registration and await payment")
	case "activate":
		setStatus(args[1:], "active", "activate the account")
	case "suspend":
		setStatus(args[1:], "suspended", "suspend the account and revoke its sessions")
	case "reactivate":
		setStatus(args[1:], "active", "reactivate the suspended account")
	case "set-role":
		setRole(args[1:])
	case "reset-password":
		resetPassword(args[1:])
	case "export":
		exportCompanies(args[1:])
	default:
		fmt.Printf("unknown companies command: %s\n", subCmd)
	}
}

func handleTeam(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink team <list|add|remove>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listTeam(args[1:])
	case "add":
		addTeamMember(args[1:])
	case "remove":
		removeTeamMember(args[1:])
	default:
		fmt.Printf("unknown team command: %s\n", subCmd)
	}
}

func handleSettings(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink settings <get|set>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "get":
		getSettings()
	case "set":
		setSettings(args[1:])
	default:
		fmt.Printf("unknown settings command: %s\n", subCmd)
	}
}

// Auth commands
func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	document := fs.String("document", "", "account document (CNPJ/CPF)")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if (*email == "" && *document == "") || *password == "" {
		fmt.Println("Error: email or document, and password, are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"document": *document,
		"password": *password,
	}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Println("✓ Logged in")
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	preview := token
	if len(preview) > 20 {
		preview = preview[:20]
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", preview)
}

// Companies commands
func listCompanies(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("q", "", "search name, email or document")
	status := fs.String("status", "", "filter by status")
	fs.Parse(args)

	url := getAPIURL() + "/admin/companies?q=" + *query
	if *status != "" {
		url += "&status=" + *status
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var companies []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&companies)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tROLE")
	for _, c := range companies {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", c["id"], c["name"], c["email"], c["status"], c["role"])
	}
	w.Flush()
}

func setStatus(args []string, status, describe string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink companies <review|approve|activate|suspend|reactivate> <company-id>")
		return
	}
	id := args[0]

	if !confirm(fmt.Sprintf("This will %s %s. Continue?", describe, id)) {
		fmt.Println("Cancelled")
		return
	}

	payload := map[string]string{"status": status}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PATCH", getAPIURL()+"/admin/companies/"+id+"/status", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}
	fmt.Printf("✓ Company %s is now %s\n", id, status)
}

func setRole(args []string) {
	fs := flag.NewFlagSet("set-role", flag.ExitOnError)
	role := fs.String("role", "", "new role (admin, manager, bartender)")
	fs.Parse(args)

	rest := fs.Args()
	if *role == "" || len(rest) < 1 {
		fmt.Println("Usage: calculadrink companies set-role -role <role> <company-id>")
		return
	}
	id := rest[0]

	if !confirm(fmt.Sprintf("This will change the role of %s to %s. Continue?", id, *role)) {
		fmt.Println("Cancelled")
		return
	}

	payload := map[string]string{"role": *role}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PATCH", getAPIURL()+"/admin/companies/"+id+"/role", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}
	fmt.Printf("✓ Role updated: %s -> %s\n", id, *role)
}

func resetPassword(args []string) {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	password := fs.String("password", "", "new password (leave empty to generate one)")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Println("Usage: calculadrink companies reset-password [-password <pwd>] <company-id>")
		return
	}
	id := rest[0]

	if !confirm(fmt.Sprintf("This will reset the password of %s and revoke its sessions. Continue?", id)) {
		fmt.Println("Cancelled")
		return
	}

	payload := map[string]string{"password": *password}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/admin/companies/"+id+"/password", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✓ New password: %v\n", result["password"])
	fmt.Printf("  Hand-off link: %v\n", result["mailtoUrl"])
}

func exportCompanies(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "companies.xlsx", "output file")
	fs.Parse(args)

	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/companies/export", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("✓ Exported to %s\n", *out)
}

// Team commands
func listTeam(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink team list <company-id>")
		return
	}
	id := args[0]

	req, _ := http.NewRequest("GET", getAPIURL()+"/companies/"+id+"/team", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var users []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&users)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", u["id"], u["name"], u["email"], u["role"])
	}
	w.Flush()
}

func addTeamMember(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "member name")
	email := fs.String("email", "", "member email")
	role := fs.String("role", "bartender", "member role")
	password := fs.String("password", "", "member password")
	fs.Parse(args)

	rest := fs.Args()
	if *name == "" || *email == "" || *password == "" || len(rest) < 1 {
		fmt.Println("Usage: calculadrink team add -name <name> -email <email> -password <pwd> [-role <role>] <company-id>")
		return
	}
	id := rest[0]

	payload := map[string]string{
		"name":     *name,
		"email":    *email,
		"role":     *role,
		"password": *password,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/companies/"+id+"/team", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		printAPIError(resp)
		return
	}
	fmt.Printf("✓ Team member added: %s\n", *email)
}

func removeTeamMember(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calculadrink team remove <user-id>")
		return
	}
	id := args[0]

	if !confirm(fmt.Sprintf("This will remove team member %s. Continue?", id)) {
		fmt.Println("Cancelled")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/team/"+id, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 204 {
		printAPIError(resp)
		return
	}
	fmt.Printf("✓ Team member removed: %s\n", id)
}

// Settings commands
func getSettings() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/settings", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}

	var settings map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&settings)
	out, _ := json.MarshalIndent(settings, "", "  ")
	fmt.Println(string(out))
}

func setSettings(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with the full settings payload")
	fs.Parse(args)

	if *file == "" {
		fmt.Println("Usage: calculadrink settings set -file <settings.json>")
		return
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if !confirm("This will overwrite the platform settings for every account. Continue?") {
		fmt.Println("Cancelled")
		return
	}

	req, _ := http.NewRequest("PUT", getAPIURL()+"/admin/settings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printAPIError(resp)
		return
	}
	fmt.Println("✓ Settings saved")
}

// Helper functions

// stdin is swapped out in tests.
var stdin io.Reader = os.Stdin

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printAPIError(resp *http.Response) {
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✗ Request failed (%d): %v\n", resp.StatusCode, result)
}

func getAPIURL() string {
	if url := os.Getenv("CALCULADRINK_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.calculadrink/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.calculadrink", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`CalculaDrink Platform CLI

Usage:
  calculadrink <command> [options]

Commands:
  auth       Authentication (login, logout, who)
  companies  Account console (list, review, approve, activate, suspend,
             reactivate, set-role, reset-password, export) - master access
             required
  team       Team management (list, add, remove)
  settings   Platform settings (get, set) - master access required
  help       Show this help message

Environment Variables:
  CALCULADRINK_API    API endpoint (default: http://localhost:8080/api)

Examples:
  calculadrink auth login -email master@calculadrink.com -password pass
  calculadrink companies list -status requested
  calculadrink companies review 4f2a9c
  calculadrink companies approve 4f2a9c
  calculadrink companies activate 4f2a9c
  calculadrink companies reset-password 4f2a9c
  calculadrink team add -name Maria -email maria@bar.com -password pass 4f2a9c
`)
}

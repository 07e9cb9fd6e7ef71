package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/chatwire/chatwire/internal/config"
	"github.com/chatwire/chatwire/internal/events"
	"github.com/chatwire/chatwire/internal/log"
	"github.com/chatwire/chatwire/internal/tui/watch"
	"github.com/chatwire/chatwire/internal/twilio"
	"github.com/chatwire/chatwire/internal/upi"
	"github.com/chatwire/chatwire/internal/webhook"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	if cmd == "--version" {
		return runVersion(args)
	}

	switch cmd {
	case "serve", "start":
		return runServe(args)
	case "send":
		return runSendNoun(args)
	case "watch":
		return runWatch(args)
	case "config":
		return runConfigNoun(args)
	case "version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: chatwire version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("chatwire %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalizedBuildTime, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalizedBuildTime
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}

	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`chatwire - Twilio WhatsApp messaging gateway

Usage:
  chatwire <command> [flags]

Commands:
  serve             Run the inbound webhook gateway in foreground
  send <kind>       Send an outbound WhatsApp message
  watch             Real-time traffic monitoring TUI
  config lock       Authorize current config state (write integrity hash)
  config check      Validate config syntax and integrity

Send Kinds:
  text              Plain text message
  media             Text with an attached media URL
  template          Pre-approved content template
  buttons           Interactive button-reply message (up to 3 buttons)
  list              Interactive list-picker message
  quickreply        Buttons for up to 3 choices, a list beyond that
  payment           Formatted payment request summary
  reminder          Reminder, interactive when buttons are given
  appointment       Appointment reminder with confirm/reschedule/cancel
  order             Order status update with tracking buttons
  upi               UPI payment link (optionally with a scannable QR)

General:
  --version         Show version information
  version           Show version information
  help              Show this help message

Use 'chatwire send <kind> --help' for per-kind flags.
`)
}

// --- SERVE ---

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	autoReply := fs.String("auto-reply", "", "Static reply sent to every verified inbound message")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("chatwire starting", "version", version, "config", path)

	hub := events.NewHub(256)
	client, err := twilio.NewClient(twilio.Credentials{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
	}, twilio.WithEventHub(hub))
	if err != nil {
		logger.Error("failed to construct sender", "error", err)
		return 1
	}

	var policy webhook.AutoReplyPolicy
	if *autoReply != "" {
		reply := *autoReply
		policy = webhook.PolicyFunc(func(from, body string) (string, bool) {
			return reply, true
		})
	}

	maxBody := int64(0)
	if cfg.Webhook.MaxBodySize != "" {
		maxBody, err = config.ParseMaxBodySize(cfg.Webhook.MaxBodySize)
		if err != nil {
			logger.Error("invalid max_body_size", "error", err)
			return 1
		}
	}

	server := webhook.New(webhook.Config{
		Listen:          cfg.Webhook.Listen,
		Path:            cfg.Webhook.Path,
		PublicURL:       cfg.Webhook.PublicURL,
		SignatureHeader: cfg.Webhook.SignatureHeader,
		AuthToken:       cfg.Twilio.AuthToken,
		MaxBodySize:     maxBody,
		APIKey:          cfg.API.Key,
	}, client, policy, hub, log.WithComponent("webhook"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			errCh <- err
		}
	}()

	logger.Info("chatwire running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("webhook server failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("chatwire stopped")
	return 0
}

func loadConfig(configPath string) (*config.Config, string, error) {
	if configPath == "" {
		discovered, err := config.DiscoverConfigPath()
		if err != nil {
			return nil, "", err
		}
		configPath = discovered
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

// --- SEND ---

func runSendNoun(args []string) int {
	if len(args) < 1 {
		printSendHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSendHelp(os.Stdout)
		return 0
	}

	kind := args[0]
	kindArgs := args[1:]

	switch kind {
	case "text":
		return runSendText(kindArgs)
	case "media":
		return runSendMedia(kindArgs)
	case "template":
		return runSendTemplate(kindArgs)
	case "buttons":
		return runSendButtons(kindArgs)
	case "list":
		return runSendList(kindArgs)
	case "quickreply":
		return runSendQuickReply(kindArgs)
	case "payment":
		return runSendPayment(kindArgs)
	case "reminder":
		return runSendReminder(kindArgs)
	case "appointment":
		return runSendAppointment(kindArgs)
	case "order":
		return runSendOrder(kindArgs)
	case "upi":
		return runSendUPI(kindArgs)
	case "help":
		printSendHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown send kind: %s\n", kind)
		printSendHelp(os.Stderr)
		return 1
	}
}

func printSendHelp(w *os.File) {
	fmt.Fprint(w, `Usage: chatwire send <kind> [flags]

Kinds: text, media, template, buttons, list, quickreply, payment,
reminder, appointment, order, upi

Common flags:
  --config PATH    Configuration file (discovered when omitted)
  --to NUMBER      Recipient phone number (E.164, prefix optional)
`)
}

// sendClient loads config and constructs the outbound client for one-shot
// CLI sends.
func sendClient(configPath string) (*twilio.Client, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log.Setup(cfg.Service.LogLevel)
	return twilio.NewClient(twilio.Credentials{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
	})
}

func printSendResult(result *twilio.SendResult) {
	fmt.Printf("sid: %s\n", result.SID)
	fmt.Printf("status: %s\n", result.Status)
}

func sendContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func runSendText(args []string) int {
	fs := flag.NewFlagSet("send text", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	body := fs.String("body", "", "Message text")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendText(ctx, *to, *body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendMedia(args []string) int {
	fs := flag.NewFlagSet("send media", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	body := fs.String("body", "", "Message text")
	mediaURL := fs.String("media-url", "", "Publicly reachable media URL")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendMedia(ctx, *to, *body, *mediaURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendTemplate(args []string) int {
	fs := flag.NewFlagSet("send template", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	contentSID := fs.String("content-sid", "", "Approved content template SID")
	variables := fs.String("variables", "", "JSON substitution map")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendTemplate(ctx, *to, *contentSID, *variables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendButtons(args []string) int {
	fs := flag.NewFlagSet("send buttons", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	header := fs.String("header", "", "Header text")
	body := fs.String("body", "", "Body text")
	footer := fs.String("footer", "", "Footer text")
	buttons := fs.String("buttons", "", "Comma-separated id=title pairs (max 3)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	parsed, err := parseButtons(*buttons)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendInteractiveButtons(ctx, *to, twilio.InteractiveButtons{
		Header:  *header,
		Body:    *body,
		Footer:  *footer,
		Buttons: parsed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendList(args []string) int {
	fs := flag.NewFlagSet("send list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	header := fs.String("header", "", "Header text")
	body := fs.String("body", "", "Body text")
	footer := fs.String("footer", "", "Footer text")
	actionLabel := fs.String("action-label", "Choose", "Text on the button that opens the list")
	sectionTitle := fs.String("section-title", "", "Section title")
	rows := fs.String("rows", "", "Comma-separated id=title[:description] rows")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	parsedRows, err := parseRows(*rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendInteractiveList(ctx, *to, twilio.InteractiveList{
		Header:      *header,
		Body:        *body,
		Footer:      *footer,
		ActionLabel: *actionLabel,
		Sections: []twilio.ListSection{
			{Title: *sectionTitle, Rows: parsedRows},
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendQuickReply(args []string) int {
	fs := flag.NewFlagSet("send quickreply", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	prompt := fs.String("prompt", "", "Prompt text")
	choices := fs.String("choices", "", "Comma-separated choice titles")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	choiceList := splitNonEmpty(*choices)
	if len(choiceList) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one choice is required")
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendQuickReplies(ctx, *to, *prompt, choiceList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendPayment(args []string) int {
	fs := flag.NewFlagSet("send payment", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	amount := fs.Float64("amount", 0, "Amount due")
	currency := fs.String("currency", "INR", "Currency code")
	description := fs.String("description", "", "What the payment is for")
	reference := fs.String("reference", "", "Payment reference id (generated when omitted)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	ref := *reference
	if ref == "" {
		ref = uuid.NewString()
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendPaymentRequest(ctx, *to, twilio.PaymentRequest{
		Amount:      *amount,
		Currency:    *currency,
		Description: *description,
		ReferenceID: ref,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	fmt.Printf("reference: %s\n", ref)
	printSendResult(result)
	return 0
}

func runSendReminder(args []string) int {
	fs := flag.NewFlagSet("send reminder", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	title := fs.String("title", "", "Reminder title")
	body := fs.String("body", "", "Reminder text")
	at := fs.String("at", "", "Scheduled time, shown to the recipient")
	buttons := fs.String("buttons", "", "Comma-separated id=title action buttons (optional)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	parsed, err := parseButtons(*buttons)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendReminder(ctx, *to, twilio.Reminder{
		Title:       *title,
		Body:        *body,
		ScheduledAt: *at,
		Buttons:     parsed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendAppointment(args []string) int {
	fs := flag.NewFlagSet("send appointment", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	date := fs.String("date", "", "Appointment date")
	timeOfDay := fs.String("time", "", "Appointment time")
	location := fs.String("location", "", "Appointment location")
	doctor := fs.String("doctor", "", "Doctor name (optional)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendAppointmentReminder(ctx, *to, *date, *timeOfDay, *location, *doctor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendOrder(args []string) int {
	fs := flag.NewFlagSet("send order", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	orderID := fs.String("order-id", "", "Order id")
	status := fs.String("status", "", "Order status")
	trackingURL := fs.String("tracking-url", "", "Tracking URL (optional)")
	eta := fs.String("eta", "", "Estimated delivery (optional)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := client.SendOrderStatus(ctx, *to, *orderID, *status, *trackingURL, *eta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

func runSendUPI(args []string) int {
	fs := flag.NewFlagSet("send upi", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	to := fs.String("to", "", "Recipient phone number")
	vpa := fs.String("vpa", "", "Payee UPI address, e.g. shop@upi")
	payee := fs.String("payee", "", "Payee display name")
	amount := fs.Float64("amount", 0, "Amount in INR")
	note := fs.String("note", "", "Transaction note (optional)")
	app := fs.String("app", "any", "UPI app: any, googlepay, phonepe, paytm")
	withQR := fs.Bool("qr", false, "Append a scannable text QR code")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	upiApp, err := upi.ParseApp(*app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := sendClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := sendContext()
	defer cancel()
	result, err := upi.SendRequest(ctx, client, upi.Request{
		To:        *to,
		VPA:       *vpa,
		Payee:     *payee,
		Amount:    *amount,
		Note:      *note,
		App:       upiApp,
		IncludeQR: *withQR,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		return 1
	}
	printSendResult(result)
	return 0
}

// --- WATCH ---

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	apiURL := fs.String("api-url", "http://localhost:8085", "Gateway API URL")
	apiKey := fs.String("api-key", os.Getenv("CHATWIRE_API_KEY"), "API Bearer Token")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: API key required. Use --api-key or CHATWIRE_API_KEY env var.")
		return 1
	}

	m := watch.New(*apiURL, *apiKey)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

// --- CONFIG ---

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "lock":
		return runConfigLock(actionArgs)
	case "check":
		return runConfigCheck(actionArgs)
	case "help":
		printConfigNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprint(w, `Usage: chatwire config <action> [flags]

Actions:
  lock    Authorize current config state (write integrity hash sidecar)
  check   Validate config syntax, credentials, and integrity
`)
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("config lock", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path := *configPath
	if path == "" {
		discovered, err := config.DiscoverConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		path = discovered
	}

	if err := config.Lock(path); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config: %v\n", err)
		return 1
	}

	fmt.Printf("Locked %s\n", path)
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("config check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path := *configPath
	if path == "" {
		discovered, err := config.DiscoverConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		path = discovered
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check failed: %v\n", err)
		return 1
	}

	fmt.Printf("OK %s\n", path)
	fmt.Printf("  service: %s\n", cfg.Service.Name)
	fmt.Printf("  listen: %s\n", cfg.Webhook.Listen)
	fmt.Printf("  webhook path: %s\n", cfg.Webhook.Path)
	fmt.Printf("  public url: %s\n", cfg.Webhook.PublicURL)
	return 0
}

// --- HELPERS ---

func isHelpToken(s string) bool {
	return s == "help" || s == "--help" || s == "-h"
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseButtons parses comma-separated id=title pairs. A bare title gets a
// positional id so quick CLI sends stay terse.
func parseButtons(s string) ([]twilio.Button, error) {
	parts := splitNonEmpty(s)
	buttons := make([]twilio.Button, 0, len(parts))
	for i, part := range parts {
		id, title, found := strings.Cut(part, "=")
		if !found {
			buttons = append(buttons, twilio.Button{ID: "choice_" + strconv.Itoa(i), Title: part})
			continue
		}
		if strings.TrimSpace(id) == "" || strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("invalid button %q, want id=title", part)
		}
		buttons = append(buttons, twilio.Button{ID: strings.TrimSpace(id), Title: strings.TrimSpace(title)})
	}
	return buttons, nil
}

// parseRows parses comma-separated id=title[:description] list rows.
func parseRows(s string) ([]twilio.ListRow, error) {
	parts := splitNonEmpty(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one row is required")
	}
	rows := make([]twilio.ListRow, 0, len(parts))
	for _, part := range parts {
		id, rest, found := strings.Cut(part, "=")
		if !found || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid row %q, want id=title[:description]", part)
		}
		title, desc, _ := strings.Cut(rest, ":")
		if strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("invalid row %q, empty title", part)
		}
		rows = append(rows, twilio.ListRow{
			ID:          strings.TrimSpace(id),
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(desc),
		})
	}
	return rows, nil
}

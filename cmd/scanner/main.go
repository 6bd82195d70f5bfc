package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/scandoo/scandoo/internal/models"
	"github.com/scandoo/scandoo/internal/scanner"
	"github.com/scandoo/scandoo/internal/utils"
	"github.com/scandoo/scandoo/pkg/scandoo"
)

// main runs the terminal scan client: codes typed on stdin act as manual
// searches against the product API, with add/edit/cancel/retry/toggle
// commands driving the controller.
func main() {
	server := flag.String("server", "http://localhost:8080", "Product API base URL")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if env := os.Getenv("SCANDOO_SERVER"); env != "" {
		*server = env
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	api := &apiAdapter{client: scandoo.NewClient(*server)}
	ctrl := scanner.NewController(api, scanner.NopDetector{})

	fmt.Printf("scandoo scan client — server %s\n", *server)
	fmt.Println("Type a product code to search. Commands: add, edit, cancel, retry, toggle, quit")

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())

		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		case "add", "edit":
			ctrl.OpenForm()
			if ctrl.Snapshot().State != scanner.StateEditing {
				fmt.Println("Nothing to add or edit — search a code first.")
				continue
			}
			submitForm(ctrl, in)
		case "cancel":
			ctrl.CancelForm()
		case "retry":
			ctrl.Retry()
		case "toggle":
			ctrl.ToggleCamera()
		default:
			search(ctrl, line)
		}

		render(ctrl.Snapshot())
	}
}

// search runs a manual search and waits for it to resolve.
func search(ctrl *scanner.Controller, code string) {
	done := make(chan struct{})
	ctrl.ManualSearch(code, func() { close(done) })
	<-done
}

// submitForm prompts for the form fields and submits, re-prompting on
// inline validation errors.
func submitForm(ctrl *scanner.Controller, in *bufio.Scanner) {
	snap := ctrl.Snapshot()
	defaultCode := snap.ScannedCode
	defaultTitle := ""
	defaultPrice := ""
	if snap.Product != nil {
		defaultCode = snap.Product.Code
		defaultTitle = snap.Product.Title
		defaultPrice = fmt.Sprintf("%.2f", snap.Product.Price)
	}

	title := prompt(in, "Title", defaultTitle)
	code := prompt(in, "Code", defaultCode)
	price := prompt(in, "Price", defaultPrice)

	if err := ctrl.SubmitForm(context.Background(), title, code, price); err != nil {
		fmt.Printf("  %v\n", err)
	}
}

// prompt reads one field, falling back to def when the input is empty.
func prompt(in *bufio.Scanner, label, def string) string {
	if def != "" {
		fmt.Printf("  %s [%s]: ", label, def)
	} else {
		fmt.Printf("  %s: ", label)
	}
	if !in.Scan() {
		return def
	}
	v := strings.TrimSpace(in.Text())
	if v == "" {
		return def
	}
	return v
}

// render prints the controller state the way the result view would.
func render(snap scanner.Snapshot) {
	switch snap.State {
	case scanner.StateShowingProduct:
		fmt.Printf("  %s\n  %s — %.2f\n", snap.Product.Code, snap.Product.Title, snap.Product.Price)
	case scanner.StateShowingNotFound:
		fmt.Printf("  %s\n  This product is not in database yet. Type 'add' to create it.\n", snap.ScannedCode)
	case scanner.StateShowingError:
		fmt.Printf("  Error: %s\n  Type 'retry' to scan again.\n", snap.Err)
	case scanner.StateEditing:
		fmt.Println("  Form open. Type 'edit' to re-enter fields or 'cancel' to discard.")
	case scanner.StateScanning:
		fmt.Println("  Scanning — enter a code.")
	}
}

// apiAdapter adapts the HTTP client to the controller's ProductAPI,
// translating wire products and sentinels into the domain's.
type apiAdapter struct {
	client *scandoo.Client
}

func (a *apiAdapter) FetchByCode(ctx context.Context, code string) (*models.Product, error) {
	p, err := a.client.GetProduct(ctx, code)
	if err != nil {
		return nil, translateErr(err)
	}
	return toModel(p), nil
}

func (a *apiAdapter) Create(ctx context.Context, title, code string, price float64) (*models.Product, error) {
	p, err := a.client.CreateProduct(ctx, title, code, price)
	if err != nil {
		return nil, translateErr(err)
	}
	return toModel(p), nil
}

func (a *apiAdapter) UpdateByCode(ctx context.Context, code, title, newCode string, price float64) (*models.Product, error) {
	p, err := a.client.UpdateProduct(ctx, code, title, newCode, price)
	if err != nil {
		return nil, translateErr(err)
	}
	return toModel(p), nil
}

func translateErr(err error) error {
	if errors.Is(err, scandoo.ErrNotFound) {
		return utils.ErrNotFound
	}
	return err
}

func toModel(p *scandoo.Product) *models.Product {
	id, _ := primitive.ObjectIDFromHex(p.ID)
	return &models.Product{
		ID:    id,
		Title: p.Title,
		Code:  p.Code,
		Price: p.Price,
	}
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	cfg struct {
		// Backend config
		ApiURL  string        `help:"Base URL of the RAG backend API" default:"http://localhost:8000/api"`
		Timeout time.Duration `help:"Timeout per request" default:"60s"`

		// Auth config
		Email    string `help:"Sign in (or sign up) with this email when set" default:""`
		Password string `help:"Password for --email" default:""`
		Name     string `help:"Display name used when signing up" default:"Quickstart"`

		// Seed config
		Seed []string `help:"Files to ingest before the prompt opens" type:"existingfile"`
	}
)

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type client struct {
	http  *http.Client
	base  string
	token string
}

func main() {
	// Parse inputs
	_ = kong.Parse(&cfg)
	ctx := context.Background()

	c := &client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		base: strings.TrimRight(cfg.ApiURL, "/"),
	}

	if len(cfg.Email) > 0 {
		if err := c.authenticate(ctx); err != nil {
			log.Fatalf("❌ failed to authenticate: %v", err)
		}
		fmt.Printf("✅ Signed in as %s\n", cfg.Email)
	}

	for _, path := range cfg.Seed {
		id, err := c.ingestFile(ctx, path)
		if err != nil {
			log.Fatalf("❌ failed to ingest %s: %v", path, err)
		}
		fmt.Printf("✅ Ingested %s as %s\n", path, id)
	}

	fmt.Println("RAG quickstart. Ask a question, or use /file <path>, /latest <section>. Empty line quits.")

	var history []turn
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil && len(input) == 0 {
			fmt.Println("Goodbye!")
			return
		}
		input = strings.TrimSpace(input)
		if len(input) == 0 {
			fmt.Println("Goodbye!")
			return
		}

		switch {
		case strings.HasPrefix(input, "/file "):
			path := strings.TrimSpace(strings.TrimPrefix(input, "/file "))
			id, err := c.ingestFile(ctx, path)
			if err != nil {
				fmt.Printf("❌ Failed to ingest: %v\n", err)
				continue
			}
			fmt.Printf("📎 Ingested %s as %s\n", filepath.Base(path), id)

		case strings.HasPrefix(input, "/latest "):
			section := strings.TrimSpace(strings.TrimPrefix(input, "/latest "))
			var rsp struct {
				Response  string `json:"response"`
				Reasoning string `json:"reasoning"`
			}
			if err := c.post(ctx, "/latest-developments", map[string]string{"book_section": section}, &rsp); err != nil {
				fmt.Printf("❌ %v\n", err)
				continue
			}
			fmt.Printf("%s\n(%s)\n---\n", rsp.Response, rsp.Reasoning)

		default:
			history = append(history, turn{Role: "user", Content: input})

			var rsp struct {
				Response string `json:"response"`
				Sources  []struct {
					Title string `json:"title"`
				} `json:"sources"`
			}
			if err := c.post(ctx, "/chat", map[string]any{"history": history}, &rsp); err != nil {
				history = history[:len(history)-1]
				fmt.Printf("❌ %v\n", err)
				continue
			}

			history = append(history, turn{Role: "assistant", Content: rsp.Response})

			fmt.Println(rsp.Response)
			for _, src := range rsp.Sources {
				fmt.Printf("  📚 %s\n", src.Title)
			}
			fmt.Println("---")
		}
	}
}

func (c *client) authenticate(ctx context.Context) error {
	var rsp struct {
		Token string `json:"token"`
	}

	creds := map[string]string{"email": cfg.Email, "password": cfg.Password}

	if err := c.post(ctx, "/auth/sign-in/email", creds, &rsp); err == nil {
		c.token = rsp.Token
		return nil
	}

	creds["name"] = cfg.Name

	if err := c.post(ctx, "/auth/sign-up/email", creds, &rsp); err != nil {
		return err
	}

	c.token = rsp.Token

	return nil
}

func (c *client) ingestFile(ctx context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	name := filepath.Base(path)
	req := map[string]any{
		"text": string(b),
		"metadata": map[string]string{
			"source": strings.TrimSuffix(name, filepath.Ext(name)),
			"path":   "/" + name,
		},
	}

	var rsp struct {
		Id string `json:"id"`
	}
	if err := c.post(ctx, "/ingest", req, &rsp); err != nil {
		return "", err
	}

	return rsp.Id, nil
}

func (c *client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(c.token) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rsp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 300 {
		b, _ := io.ReadAll(rsp.Body)
		return fmt.Errorf("status: %s body: %s", rsp.Status, strings.TrimSpace(string(b)))
	}

	return json.NewDecoder(rsp.Body).Decode(out)
}

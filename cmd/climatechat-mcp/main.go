// Command climatechat-mcp exposes the climate QA pipeline as an MCP
// server over stdio.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	climatechat "github.com/resilience-labs/climatechat"
	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/config"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "climatechat-mcp: %v\n", err)
		os.Exit(1)
	}

	client, err := climatechat.NewClient(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "climatechat-mcp: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	s := server.NewMCPServer(
		"climatechat",
		version,
		server.WithInstructions("Answers climate change questions in over 90 languages, grounded in a curated climate knowledge base."),
	)

	s.AddTool(
		mcp.NewTool("ask_climate_question",
			mcp.WithDescription("Answer a climate change question with cited sources. Pass a session_id to keep conversation context across questions."),
			mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
			mcp.WithString("language", mcp.Description("Language of the question and answer, e.g. english, spanish, swahili. Defaults to english.")),
			mcp.WithString("session_id", mcp.Description("Session id from new_session; omit for a one-off question")),
		),
		handleAsk(client),
	)
	s.AddTool(
		mcp.NewTool("list_languages",
			mcp.WithDescription("List the supported language names."),
		),
		handleListLanguages(client),
	)
	s.AddTool(
		mcp.NewTool("new_session",
			mcp.WithDescription("Open a conversation session and return its id."),
		),
		handleNewSession(client),
	)
	s.AddTool(
		mcp.NewTool("end_session",
			mcp.WithDescription("Discard a conversation session and its history."),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id to discard")),
		),
		handleEndSession(client),
	)

	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("serve: %v", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

type askResponse struct {
	Answer       string          `json:"answer,omitempty"`
	Citations    json.RawMessage `json:"citations,omitempty"`
	Faithfulness float64         `json:"faithfulness_score,omitempty"`
	Language     string          `json:"language_code"`
	CacheHit     bool            `json:"cache_hit,omitempty"`
}

func handleAsk(client *climatechat.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lang := req.GetString("language", "english")
		sessionID := req.GetString("session_id", "")

		res := client.Ask(ctx, question, lang, sessionID)
		if !res.Success {
			return mcp.NewToolResultError(res.Message), nil
		}

		cites, err := json.Marshal(res.Citations)
		if err != nil {
			return nil, fmt.Errorf("marshal citations: %w", err)
		}
		out, err := json.Marshal(askResponse{
			Answer:       res.Answer,
			Citations:    cites,
			Faithfulness: res.Faithfulness,
			Language:     res.LanguageCode,
			CacheHit:     res.CacheHit,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func handleListLanguages(client *climatechat.Client) server.ToolHandlerFunc {
	return func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(strings.Join(client.Languages(), ", ")), nil
	}
}

func handleNewSession(client *climatechat.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := client.NewSession(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(id), nil
	}
}

func handleEndSession(client *climatechat.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := client.EndSession(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("session ended"), nil
	}
}

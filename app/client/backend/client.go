package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"coursechat/app/config"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

// Client talks to the assistant backend over its REST surface. The ambient
// session credential is a cookie attached to every request; the client never
// refreshes or otherwise manages it.
type Client struct {
	cfg     *config.Config
	baseURL string
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
	}, nil
}

func (c *Client) LoginURL() string {
	return c.baseURL + "/login"
}

func (c *Client) LogoutURL() string {
	return c.baseURL + "/logout"
}

// Me probes the identity endpoint. A non-2xx response means "not logged in"
// and is not an error; only transport failures are.
func (c *Client) Me(ctx context.Context) (*UserIdentity, error) {
	code, body, err := c.send(ctx, fiber.Get(c.baseURL+"/api/me"))
	if err != nil {
		return nil, fmt.Errorf("identity probe failed: %w", err)
	}

	if code < 200 || code >= 300 {
		return nil, nil
	}

	var user UserIdentity
	if err = json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse identity response: %w", err)
	}

	return &user, nil
}

func (c *Client) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	code, body, err := c.send(ctx, fiber.Get(c.baseURL+"/conversations"))
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("list conversations returned status %d", code)
	}

	var list []ConversationSummary
	if err = json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse conversation list: %w", err)
	}

	return list, nil
}

func (c *Client) GetConversation(ctx context.Context, id ConversationID) ([]Message, error) {
	code, body, err := c.send(ctx, fiber.Get(c.conversationURL(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("load conversation %s returned status %d", id, code)
	}

	var messages []Message
	if err = json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse conversation %s: %w", id, err)
	}

	return messages, nil
}

// Ask submits a query. A nil conversationID asks the backend to start a new
// conversation; the response always carries the conversation id the exchange
// was recorded under.
func (c *Client) Ask(ctx context.Context, query string, conversationID *ConversationID) (*AskResponse, error) {
	agent := fiber.Post(c.baseURL + "/ask")
	agent.JSON(AskRequest{
		Query:          query,
		ConversationID: conversationID,
	})

	code, body, err := c.send(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("ask request failed: %w", err)
	}
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("ask returned status %d", code)
	}

	var response AskResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse ask response: %w", err)
	}

	return &response, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id ConversationID) error {
	code, _, err := c.send(ctx, fiber.Delete(c.conversationURL(id)))
	if err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("delete conversation %s returned status %d", id, code)
	}

	return nil
}

func (c *Client) DeleteAllConversations(ctx context.Context) error {
	code, _, err := c.send(ctx, fiber.Delete(c.baseURL+"/conversations"))
	if err != nil {
		return fmt.Errorf("failed to delete conversations: %w", err)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("delete conversations returned status %d", code)
	}

	return nil
}

func (c *Client) conversationURL(id ConversationID) string {
	return c.baseURL + "/conversations/" + url.PathEscape(string(id))
}

func (c *Client) send(ctx context.Context, agent *fiber.Agent) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, err
	}

	if c.cfg.Backend.SessionToken != "" {
		agent.Cookie(c.cfg.Backend.SessionCookie, c.cfg.Backend.SessionToken)
	}

	if timeout := c.cfg.Backend.Timeout(); timeout > 0 {
		agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, errs[0]
	}

	return code, body, nil
}

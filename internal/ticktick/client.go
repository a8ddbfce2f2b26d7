package ticktick

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/instrumentation"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
)

// Client talks to the TickTick Open API. It is safe for concurrent use; all
// calls share one connection pool and one token pair.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *TokenManager
	limiter    *rate.Limiter
	logger     logging.Logger
	metrics    *instrumentation.Metrics
	observer   TokenObserver
	sleep      Sleeper
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API and token requests.
// Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTokenObserver registers fn to be called after every successful refresh.
func WithTokenObserver(fn TokenObserver) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithSleeper replaces the backoff sleep. Tests use it to record waits.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithClock replaces time.Now for due-date filters and durations.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client from cfg. It fails with a KindConfiguration
// error when no access token is configured.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, &Error{Kind: KindConfiguration, Message: MessageMissingAccessToken}
	}
	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:    cfg,
		logger: logging.DefaultLogger(),
		sleep:  sleepContext,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if cfg.MaxRequestsPerSecond > 0 {
		burst := int(cfg.MaxRequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), burst)
	}

	c.tokens = newTokenManager(cfg, c.httpClient, c.observer, c.logger, c.metrics)
	return c, nil
}

// Close releases idle pooled connections. The client must not be used afterwards.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Token returns the current token pair.
func (c *Client) Token() Token {
	return c.tokens.Current()
}

// CanRefresh reports whether the client is able to refresh its access token.
func (c *Client) CanRefresh() bool {
	return c.tokens.CanRefresh()
}

// do executes a call and decodes the payload into out, if out is not nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := c.Execute(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: KindDecode, Message: fmt.Sprintf("failed to decode %s %s response: %v", method, path, err), Body: string(payload), Err: err}
	}
	return nil
}

func projectPath(projectID string) string {
	return "/project/" + url.PathEscape(projectID)
}

func projectTaskPath(projectID, taskID string) string {
	return projectPath(projectID) + "/task/" + url.PathEscape(taskID)
}

// ListProjects lists all projects of the user
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject retrieves a specific project
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, projectPath(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectData retrieves a project with its undone tasks and columns
func (c *Client) GetProjectData(ctx context.Context, projectID string) (*ProjectData, error) {
	var data ProjectData
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/data", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateProject creates a new project. Color, view mode and kind default to
// DefaultProjectColor, DefaultProjectView and DefaultProjectKind.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	if input.Color == "" {
		input.Color = DefaultProjectColor
	}
	if input.ViewMode == "" {
		input.ViewMode = DefaultProjectView
	}
	if input.Kind == "" {
		input.Kind = DefaultProjectKind
	}
	if err := validateInput(input); err != nil {
		return nil, newInputError(err)
	}

	var project Project
	if err := c.do(ctx, http.MethodPost, "/project", input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject updates an existing project. Only non-empty fields are sent.
func (c *Client) UpdateProject(ctx context.Context, projectID string, input ProjectInput) (*Project, error) {
	if err := validateInput(input, "Name"); err != nil {
		return nil, newInputError(err)
	}

	var project Project
	if err := c.do(ctx, http.MethodPost, projectPath(projectID), input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, projectPath(projectID), nil, nil)
}

// GetTask retrieves a specific task
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, projectTaskPath(projectID, taskID), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a new task. Priority defaults to PriorityNone and
// IsAllDay to false.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	if err := validateInput(input); err != nil {
		return nil, newInputError(err)
	}
	return c.createTask(ctx, input)
}

// createTask sends an already validated input.
func (c *Client) createTask(ctx context.Context, input TaskInput) (*Task, error) {
	body := taskBody{
		Title:     input.Title,
		ProjectID: input.ProjectID,
		Content:   input.Content,
		StartDate: input.StartDate,
		DueDate:   input.DueDate,
		Priority:  input.Priority,
		IsAllDay:  input.IsAllDay,
	}
	if body.Priority == nil {
		body.Priority = PriorityPtr(PriorityNone)
	}
	if body.IsAllDay == nil {
		allDay := false
		body.IsAllDay = &allDay
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/task", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask updates an existing task. Empty fields are left untouched;
// ProjectID is required.
func (c *Client) UpdateTask(ctx context.Context, taskID string, input TaskInput) (*Task, error) {
	if err := validateInput(input, "Title"); err != nil {
		return nil, newInputError(err)
	}

	body := taskBody{
		ID:        taskID,
		Title:     input.Title,
		ProjectID: input.ProjectID,
		Content:   input.Content,
		StartDate: input.StartDate,
		DueDate:   input.DueDate,
		Priority:  input.Priority,
		IsAllDay:  input.IsAllDay,
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/task/"+url.PathEscape(taskID), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task as completed
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	return c.do(ctx, http.MethodPost, projectTaskPath(projectID, taskID)+"/complete", nil, nil)
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return c.do(ctx, http.MethodDelete, projectTaskPath(projectID, taskID), nil, nil)
}

// CreateSubtask creates a task under ParentID in the parent's project.
func (c *Client) CreateSubtask(ctx context.Context, input SubtaskInput) (*Task, error) {
	if err := validateInput(input); err != nil {
		return nil, newInputError(err)
	}

	body := taskBody{
		Title:     input.Title,
		ProjectID: input.ProjectID,
		ParentID:  input.ParentID,
		Content:   input.Content,
		Priority:  input.Priority,
	}
	if body.Priority == nil {
		body.Priority = PriorityPtr(PriorityNone)
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/task", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

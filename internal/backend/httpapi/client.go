// Package httpapi is the REST client for the remote finance API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-console/internal/backend"
	"finance-console/internal/models"

	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 8 << 20

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Sprintf("%s %s: remote api returned %d: %s", e.Method, e.Path, e.Status, msg)
}

// Is lets callers test 404s with errors.Is(err, backend.ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == backend.ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

var _ backend.Backend = (*Client)(nil)

func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, log)
}

func NewWithHTTPClient(baseURL string, hc *http.Client, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		log:     log.WithField("component", "httpapi"),
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Debug("remote api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func segment(s string) string {
	return url.PathEscape(s)
}

func branchSegment(branch string) string {
	return url.PathEscape(models.BranchKey(branch))
}

// list GETs a collection; a null body decodes to an empty slice.
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// write POSTs or PUTs v and decodes the echoed record. Remote handlers that
// answer with an empty body leave v as sent.
func write[T any](ctx context.Context, c *Client, method, path string, v T) (T, error) {
	out := v
	if err := c.do(ctx, method, path, v, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// -------------------------
// Branches
// -------------------------

func (c *Client) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return list[models.Branch](ctx, c, "/api/branches")
}

func (c *Client) CreateBranch(ctx context.Context, b models.Branch) (models.Branch, error) {
	return write(ctx, c, http.MethodPost, "/api/branches", b)
}

func (c *Client) UpdateBranch(ctx context.Context, id string, b models.Branch) (models.Branch, error) {
	return write(ctx, c, http.MethodPut, "/api/branches/"+segment(id), b)
}

func (c *Client) DeleteBranch(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/branches/"+segment(id), nil, nil)
}

// -------------------------
// Branch entries (loans + payments)
// -------------------------

func (c *Client) ListEntries(ctx context.Context) ([]models.BranchEntry, error) {
	return list[models.BranchEntry](ctx, c, "/api/branch-entries")
}

func (c *Client) ListBranchEntries(ctx context.Context, branch string) ([]models.BranchEntry, error) {
	return list[models.BranchEntry](ctx, c, "/api/branch-entries/"+branchSegment(branch))
}

func (c *Client) CreateEntry(ctx context.Context, e models.BranchEntry) (models.BranchEntry, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPost, "/api/branch-entries", e)
}

func (c *Client) UpdateEntry(ctx context.Context, id string, e models.BranchEntry) (models.BranchEntry, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPut, "/api/branch-entries/"+segment(id), e)
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/branch-entries/"+segment(id), nil, nil)
}

// -------------------------
// Branch expenses
// -------------------------

func (c *Client) ListExpenses(ctx context.Context, branch string) ([]models.Expense, error) {
	return list[models.Expense](ctx, c, "/api/branch-expenses/"+branchSegment(branch))
}

func (c *Client) CreateExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPost, "/api/branch-expenses", e)
}

func (c *Client) UpdateExpense(ctx context.Context, id string, e models.Expense) (models.Expense, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPut, "/api/branch-expenses/"+segment(id), e)
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/branch-expenses/"+segment(id), nil, nil)
}

// -------------------------
// Employee expenses
// -------------------------

func (c *Client) ListEmployeeExpenses(ctx context.Context, branch string) ([]models.EmployeeExpense, error) {
	return list[models.EmployeeExpense](ctx, c, "/api/employee-expenses/"+branchSegment(branch))
}

func (c *Client) CreateEmployeeExpense(ctx context.Context, e models.EmployeeExpense) (models.EmployeeExpense, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPost, "/api/employee-expenses", e)
}

func (c *Client) UpdateEmployeeExpense(ctx context.Context, id string, e models.EmployeeExpense) (models.EmployeeExpense, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPut, "/api/employee-expenses/"+segment(id), e)
}

func (c *Client) DeleteEmployeeExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/employee-expenses/"+segment(id), nil, nil)
}

// -------------------------
// Employees
// -------------------------

func (c *Client) ListEmployees(ctx context.Context, branch string) ([]models.Employee, error) {
	return list[models.Employee](ctx, c, "/api/branch-employees/"+branchSegment(branch))
}

func (c *Client) ListAllEmployees(ctx context.Context) ([]models.Employee, error) {
	return list[models.Employee](ctx, c, "/api/employees")
}

func (c *Client) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPost, "/api/branch-employees", e)
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, e models.Employee) (models.Employee, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPut, "/api/branch-employees/"+segment(id), e)
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/branch-employees/"+segment(id), nil, nil)
}

// -------------------------
// Customer expenses
// -------------------------

func (c *Client) ListCustomerExpenses(ctx context.Context) ([]models.CustomerExpense, error) {
	return list[models.CustomerExpense](ctx, c, "/api/customer-expenses")
}

func (c *Client) CreateCustomerExpense(ctx context.Context, e models.CustomerExpense) (models.CustomerExpense, error) {
	e.Branch = models.BranchKey(e.Branch)
	return write(ctx, c, http.MethodPost, "/api/customer-expenses", e)
}

func (c *Client) DeleteCustomerExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/customer-expenses/"+segment(id), nil, nil)
}

// -------------------------
// Category settings
// -------------------------

func (c *Client) GetCategorySettings(ctx context.Context, branch string) (models.CategorySettings, error) {
	var s models.CategorySettings
	err := c.do(ctx, http.MethodGet, "/api/branch-category-settings/"+branchSegment(branch), nil, &s)
	if errors.Is(err, backend.ErrNotFound) {
		return models.CategorySettings{AddedCategories: []string{}, DeletedCategories: []string{}}, nil
	}
	if err != nil {
		return models.CategorySettings{}, err
	}
	if s.AddedCategories == nil {
		s.AddedCategories = []string{}
	}
	if s.DeletedCategories == nil {
		s.DeletedCategories = []string{}
	}
	return s, nil
}

func (c *Client) SaveCategorySettings(ctx context.Context, branch string, s models.CategorySettings) error {
	return c.do(ctx, http.MethodPost, "/api/branch-category-settings/"+branchSegment(branch), s, nil)
}

package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListTasks returns the tasks matching the filter.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Assignee != "" {
		query.Set("assignee", filter.Assignee)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	path := "/api/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var tasks []Task
	if err := c.getJSON(ctx, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single task by id.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.getJSON(ctx, "/api/tasks/"+url.PathEscape(id), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask submits a new design request.
func (c *Client) CreateTask(ctx context.Context, req NewTask) (*Task, error) {
	var task Task
	if err := c.sendJSON(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus moves a task to a new workflow status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id, status string) (*Task, error) {
	payload := map[string]string{"status": status}
	var task Task
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// AssignTask hands a task to a user.
func (c *Client) AssignTask(ctx context.Context, id, userID string) (*Task, error) {
	payload := map[string]string{"assigneeId": userID}
	var task Task
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTaskFiles returns the attachment manifest of a task.
func (c *Client) ListTaskFiles(ctx context.Context, taskID string) ([]TaskFile, error) {
	var files []TaskFile
	if err := c.getJSON(ctx, "/api/tasks/"+url.PathEscape(taskID)+"/files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

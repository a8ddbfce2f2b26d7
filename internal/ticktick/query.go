package ticktick

import (
	"context"
)

// ProjectTasks is one open project and its tasks selected by a Filter.
type ProjectTasks struct {
	Project Project `json:"project"`
	Filter  string  `json:"filter"`
	Tasks   []Task  `json:"tasks"`
}

// QueryTasks applies f to the tasks of every open project. Closed projects
// are ignored, and projects whose data cannot be fetched are skipped; only a
// failure to list the projects is returned as an error.
func (c *Client) QueryTasks(ctx context.Context, f Filter) ([]ProjectTasks, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	results := make([]ProjectTasks, 0, len(projects))
	for _, project := range projects {
		if project.Closed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, newTransportError(err)
		}

		data, err := c.GetProjectData(ctx, project.ID)
		if err != nil {
			c.logger.Warn("Skipping project", "project_id", project.ID, "error", err.Error())
			continue
		}

		matched := make([]Task, 0, len(data.Tasks))
		for _, task := range data.Tasks {
			if f.Match(task, now) {
				matched = append(matched, task)
			}
		}
		results = append(results, ProjectTasks{Project: project, Filter: f.Name, Tasks: matched})
	}

	c.logger.Debug("Task query completed", "filter", f.Name, "projects", len(results))
	return results, nil
}

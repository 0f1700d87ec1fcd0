package models

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	Id          primitive.ObjectID `json:"id" bson:"_id"`
	Description string             `json:"description" bson:"description"`
	DueDate     *time.Time         `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Completed   bool               `json:"completed" bson:"completed"`
	CompletedAt *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

type LearningPlan struct {
	Id        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Owner     primitive.ObjectID `json:"owner" bson:"owner"`
	Topic     string             `json:"topic" bson:"topic"`
	Resources string             `json:"resources" bson:"resources"`
	Timeline  string             `json:"timeline" bson:"timeline"`
	StartDate *time.Time         `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate   *time.Time         `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Extended  bool               `json:"extended" bson:"extended"`
	Tasks     []Task             `json:"tasks" bson:"tasks"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type TaskDto struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type LearningPlanDto struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Resources string     `json:"resources"`
	Timeline  string     `json:"timeline"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Extended  bool       `json:"extended"`
	Tasks     []TaskDto  `json:"tasks"`
	CreatedAt time.Time  `json:"createdAt"`
	Owner     UserDto    `json:"owner"`
}

type TaskRequest struct {
	// ID keeps an existing task across an update; empty creates a new one.
	ID          string     `json:"id,omitempty"`
	Description string     `json:"description" validate:"required,notblank,max=500"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
}

type LearningPlanRequest struct {
	Topic     string        `json:"topic" validate:"required,notblank,max=200"`
	Resources string        `json:"resources" validate:"max=4000"`
	Timeline  string        `json:"timeline" validate:"max=200"`
	StartDate *time.Time    `json:"startDate,omitempty"`
	EndDate   *time.Time    `json:"endDate,omitempty"`
	Tasks     []TaskRequest `json:"tasks" validate:"dive"`
}

type ExtendRequest struct {
	EndDate string `json:"endDate" validate:"required"`
}

var planDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParsePlanDate accepts RFC 3339 timestamps as well as bare local dates
// ("2024-05-01") and local date-times ("2024-05-01T10:00:00"), read as UTC.
func ParsePlanDate(value string) (time.Time, error) {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	for _, layout := range planDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q", value)
}

func (t Task) ToDto() TaskDto {
	return TaskDto{
		ID:          t.Id.Hex(),
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
	}
}

func (p LearningPlan) ToDto(owner UserDto) LearningPlanDto {
	tasks := make([]TaskDto, 0, len(p.Tasks))
	for _, task := range p.Tasks {
		tasks = append(tasks, task.ToDto())
	}
	return LearningPlanDto{
		ID:        p.Id.Hex(),
		Topic:     p.Topic,
		Resources: p.Resources,
		Timeline:  p.Timeline,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Extended:  p.Extended,
		Tasks:     tasks,
		CreatedAt: p.CreatedAt,
		Owner:     owner,
	}
}

// MergeTasks replaces the task list of a plan with the requested one. Tasks
// referenced by id keep their identity, and a completed task stays completed.
func MergeTasks(existing []Task, requested []TaskRequest, now time.Time) []Task {
	byID := make(map[string]Task, len(existing))
	for _, task := range existing {
		byID[task.Id.Hex()] = task
	}

	tasks := make([]Task, 0, len(requested))
	for _, req := range requested {
		task, ok := byID[req.ID]
		if !ok {
			task = Task{Id: primitive.NewObjectID()}
		}
		task.Description = strings.TrimSpace(req.Description)
		task.DueDate = req.DueDate
		if req.Completed && !task.Completed {
			task.Completed = true
			completedAt := now
			task.CompletedAt = &completedAt
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// SortPlansByEndDate orders plans by end date, plans without one last, and
// by creation time within the same end date.
func SortPlansByEndDate(plans []LearningPlan) {
	sortByEndDate(plans, func(p LearningPlan) (*time.Time, time.Time) { return p.EndDate, p.CreatedAt })
}

// SortPlanDtosByEndDate is SortPlansByEndDate for plans already rendered.
func SortPlanDtosByEndDate(plans []LearningPlanDto) {
	sortByEndDate(plans, func(p LearningPlanDto) (*time.Time, time.Time) { return p.EndDate, p.CreatedAt })
}

func sortByEndDate[P any](plans []P, key func(P) (*time.Time, time.Time)) {
	sort.SliceStable(plans, func(i, j int) bool {
		a, createdA := key(plans[i])
		b, createdB := key(plans[j])
		switch {
		case a == nil && b == nil:
			return createdA.Before(createdB)
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return createdA.Before(createdB)
		}
		return a.Before(*b)
	})
}

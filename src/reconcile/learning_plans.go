package reconcile

import (
	"context"
	"time"

	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/tracker"
)

func planID(p models.LearningPlanDto) string { return p.ID }

func clonePlan(p models.LearningPlanDto) models.LearningPlanDto {
	p.Tasks = append([]models.TaskDto{}, p.Tasks...)
	return p
}

// LearningPlans lists learning plans with their tasks.
type LearningPlans struct {
	*List[models.LearningPlanDto]
	client Client
	mine   bool
}

// NewLearningPlans lists the plans of every user.
func NewLearningPlans(client Client) *LearningPlans {
	return &LearningPlans{List: newList("learning plan", planID, clonePlan), client: client}
}

// NewMyLearningPlans lists the viewer's own plans.
func NewMyLearningPlans(client Client) *LearningPlans {
	return &LearningPlans{List: newList("learning plan", planID, clonePlan), client: client, mine: true}
}

func (l *LearningPlans) Load(ctx context.Context) error {
	if l.mine {
		return l.load(ctx, l.client.MyLearningPlans)
	}
	return l.load(ctx, l.client.LearningPlans)
}

func (l *LearningPlans) Create(ctx context.Context, req models.LearningPlanRequest) (models.LearningPlanDto, error) {
	result, err := l.mutate(ctx, request{kind: "create"},
		func(ctx context.Context) (any, error) {
			plan, err := l.client.CreateLearningPlan(ctx, req)
			return deref("create learning plan", plan, err)
		},
		func(items []models.LearningPlanDto, result any) []models.LearningPlanDto {
			return upsert(items, result.(models.LearningPlanDto), planID)
		})
	return asPlan(result, err)
}

// Update replaces a plan's fields and tasks. Tasks keep their ids when the
// request names them.
func (l *LearningPlans) Update(ctx context.Context, id string, req models.LearningPlanRequest) (models.LearningPlanDto, error) {
	result, err := l.mutate(ctx, request{kind: KindUpdate, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			plan, err := l.client.UpdateLearningPlan(ctx, id, req)
			return deref("update learning plan", plan, err)
		},
		func(items []models.LearningPlanDto, result any) []models.LearningPlanDto {
			updated := result.(models.LearningPlanDto)
			return replace(items, id, func(models.LearningPlanDto) models.LearningPlanDto { return updated }, planID)
		})
	return asPlan(result, err)
}

func (l *LearningPlans) Remove(ctx context.Context, id string) error {
	_, err := l.mutate(ctx, request{kind: KindRemove, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			return nil, l.client.DeleteLearningPlan(ctx, id)
		},
		func(items []models.LearningPlanDto, _ any) []models.LearningPlanDto {
			return without(items, id, planID)
		})
	return err
}

// Extend moves the end date of a plan. The backend answers with the viewer's
// plans re-sorted; a list of the viewer's plans adopts that order verbatim,
// any other list only takes the extended plan.
func (l *LearningPlans) Extend(ctx context.Context, id string, endDate time.Time) error {
	_, err := l.mutate(ctx, request{kind: KindExtend, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			return l.client.ExtendLearningPlan(ctx, id, endDate)
		},
		func(items []models.LearningPlanDto, result any) []models.LearningPlanDto {
			plans := result.([]models.LearningPlanDto)
			if l.mine {
				return plans
			}
			for _, plan := range plans {
				if plan.ID == id {
					extended := plan
					return replace(items, id, func(models.LearningPlanDto) models.LearningPlanDto { return extended }, planID)
				}
			}
			return items
		})
	return err
}

// CompleteTask marks one task of plan id done. Completion cannot be undone.
func (l *LearningPlans) CompleteTask(ctx context.Context, id, taskID string) (models.TaskDto, error) {
	result, err := l.mutate(ctx, request{kind: KindComplete, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			task, err := l.client.CompleteTask(ctx, taskID)
			return deref("complete task", task, err)
		},
		func(items []models.LearningPlanDto, result any) []models.LearningPlanDto {
			done := result.(models.TaskDto)
			return replace(items, id, func(plan models.LearningPlanDto) models.LearningPlanDto {
				for i := range plan.Tasks {
					if plan.Tasks[i].ID == done.ID {
						plan.Tasks[i] = done
					}
				}
				return plan
			}, planID)
		})
	if err != nil {
		return models.TaskDto{}, err
	}
	return result.(models.TaskDto), nil
}

// Progress is the completion percentage of a held plan, 0 when the list does
// not hold it.
func (l *LearningPlans) Progress(id string) int {
	plan, ok := l.Get(id)
	if !ok {
		return 0
	}
	return tracker.ProgressPercent(plan.Tasks)
}

func asPlan(result any, err error) (models.LearningPlanDto, error) {
	if err != nil {
		return models.LearningPlanDto{}, err
	}
	return result.(models.LearningPlanDto), nil
}

package reconcile

import (
	"context"

	"github.com/theleywin/SkillShare/src/models"
)

func progressID(p models.ProgressUpdateDto) string { return p.ID }

type ProgressUpdates struct {
	*List[models.ProgressUpdateDto]
	client Client
	viewer Viewer
}

func NewProgressUpdates(client Client, viewer Viewer) *ProgressUpdates {
	return &ProgressUpdates{List: newList("progress update", progressID, nil), client: client, viewer: viewer}
}

func (p *ProgressUpdates) Load(ctx context.Context) error {
	return p.load(ctx, p.client.ProgressUpdates)
}

func (p *ProgressUpdates) Create(ctx context.Context, req models.ProgressUpdateRequest) (models.ProgressUpdateDto, error) {
	result, err := p.mutate(ctx, request{kind: "create"},
		func(ctx context.Context) (any, error) {
			update, err := p.client.CreateProgressUpdate(ctx, req)
			return deref("create progress update", update, err)
		},
		func(items []models.ProgressUpdateDto, result any) []models.ProgressUpdateDto {
			return upsert(items, result.(models.ProgressUpdateDto), progressID)
		})
	if err != nil {
		return models.ProgressUpdateDto{}, err
	}
	return result.(models.ProgressUpdateDto), nil
}

func (p *ProgressUpdates) Update(ctx context.Context, id string, req models.ProgressUpdateRequest) (models.ProgressUpdateDto, error) {
	result, err := p.mutate(ctx, request{kind: KindUpdate, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			update, err := p.client.UpdateProgressUpdate(ctx, id, req)
			return deref("update progress update", update, err)
		},
		func(items []models.ProgressUpdateDto, result any) []models.ProgressUpdateDto {
			updated := result.(models.ProgressUpdateDto)
			return replace(items, id, func(models.ProgressUpdateDto) models.ProgressUpdateDto { return updated }, progressID)
		})
	if err != nil {
		return models.ProgressUpdateDto{}, err
	}
	return result.(models.ProgressUpdateDto), nil
}

func (p *ProgressUpdates) Remove(ctx context.Context, id string) error {
	_, err := p.mutate(ctx, request{kind: KindRemove, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			return nil, p.client.DeleteProgressUpdate(ctx, id)
		},
		func(items []models.ProgressUpdateDto, _ any) []models.ProgressUpdateDto {
			return without(items, id, progressID)
		})
	return err
}

// CanModify reports whether the viewer wrote the update.
func (p *ProgressUpdates) CanModify(id string) bool {
	update, ok := p.Get(id)
	viewer := p.viewer.UserID()
	return ok && viewer != "" && update.User.ID == viewer
}

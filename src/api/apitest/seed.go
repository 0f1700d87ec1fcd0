package apitest

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/theleywin/SkillShare/src/models"
	"golang.org/x/crypto/bcrypt"
)

// The seeding helpers below bypass HTTP and write straight into the store.
// Returned DTOs are rendered as their creator sees them.

// AddUser creates an account that can log in with email and password.
func (b *Backend) AddUser(name, email, password string) models.UserDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.addUser(name, email, password)
	return b.userDto(u, u.dto.ID)
}

// SessionCookie opens a session for userID without going through login.
func (b *Backend) SessionCookie(userID string) *http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := uuid.NewString()
	b.sessions[token] = userID
	return &http.Cookie{Name: sessionCookie, Value: token, Path: "/"}
}

// Sessions counts the open sessions.
func (b *Backend) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *Backend) AddPost(authorID, content string, media ...string) models.PostDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.postDto(b.addPost(authorID, content, media), authorID)
}

// PostAs renders a stored post for viewer.
func (b *Backend) PostAs(id, viewer string) (models.PostDto, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(id)
	if p == nil {
		return models.PostDto{}, false
	}
	return b.postDto(p, viewer), true
}

func (b *Backend) AddComment(postID, authorID, content string) models.CommentDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(postID)
	return b.commentDto(b.addComment(p, authorID, content), authorID)
}

func (b *Backend) AddShare(postID, sharerID, comment string) models.SharedPostDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, at := b.nextID()
	s := &share{id: id, postID: postID, sharer: sharerID, comment: comment, at: at}
	b.shares = append(b.shares, s)
	dto, _ := b.shareDto(s, sharerID)
	return dto
}

func (b *Backend) AddPlan(ownerID string, req models.LearningPlanRequest) models.LearningPlanDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.planDto(b.addPlan(ownerID, req), ownerID)
}

func (b *Backend) AddProgressUpdate(authorID string, req models.ProgressUpdateRequest) models.ProgressUpdateDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progressDto(b.addProgress(authorID, req), authorID)
}

// AddNotification delivers a notification of kind from actor to recipient.
func (b *Backend) AddNotification(recipientID, actorID string, kind models.NotificationType) models.NotificationDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify(recipientID, actorID, kind, "")
	return b.notifications[len(b.notifications)-1].dto
}

// Notifications returns what recipientID would list, newest first.
func (b *Backend) Notifications(recipientID string) []models.NotificationDto {
	b.mu.Lock()
	defer b.mu.Unlock()
	dtos := []models.NotificationDto{}
	for i := len(b.notifications) - 1; i >= 0; i-- {
		if b.notifications[i].recipient == recipientID {
			dtos = append(dtos, b.notifications[i].dto)
		}
	}
	return dtos
}

// Follow records that followerID follows followeeID.
func (b *Backend) Follow(followerID, followeeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setFollow(followerID, followeeID, true)
}

func (b *Backend) addUser(name, email, password string) *user {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	id, _ := b.nextID()
	u := &user{
		dto:       models.UserDto{ID: id, Name: strings.TrimSpace(name), Email: strings.ToLower(strings.TrimSpace(email))},
		password:  string(hash),
		following: []string{},
		followers: []string{},
	}
	b.users[id] = u
	return u
}

func (b *Backend) addPost(authorID, content string, media []string) *post {
	id, at := b.nextID()
	if media == nil {
		media = []string{}
	}
	p := &post{
		dto:     models.PostDto{ID: id, Content: content, MediaURLs: media, CreatedAt: at, UpdatedAt: at},
		author:  authorID,
		likedBy: map[string]bool{},
	}
	b.posts = append(b.posts, p)
	return p
}

func (b *Backend) addComment(p *post, authorID, content string) *comment {
	id, at := b.nextID()
	cm := &comment{
		dto:    models.CommentDto{ID: id, PostID: p.dto.ID, Content: strings.TrimSpace(content), CreatedAt: at, UpdatedAt: at},
		author: authorID,
	}
	b.comments = append(b.comments, cm)
	p.dto.CommentCount++
	b.notify(p.author, authorID, models.NotificationTypeComment, p.dto.ID)
	return cm
}

func (b *Backend) addPlan(ownerID string, req models.LearningPlanRequest) *plan {
	id, at := b.nextID()
	p := &plan{
		dto: models.LearningPlanDto{
			ID:        id,
			Topic:     strings.TrimSpace(req.Topic),
			Resources: req.Resources,
			Timeline:  req.Timeline,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			CreatedAt: at,
		},
		owner: ownerID,
	}
	p.tasks = models.MergeTasks(nil, req.Tasks, at)
	b.plans = append(b.plans, p)
	return p
}

func (b *Backend) addProgress(authorID string, req models.ProgressUpdateRequest) *progress {
	id, at := b.nextID()
	p := &progress{
		dto: models.ProgressUpdateDto{
			ID:        id,
			Skill:     strings.TrimSpace(req.Skill),
			Content:   strings.TrimSpace(req.Content),
			CreatedAt: at,
			UpdatedAt: at,
		},
		author: authorID,
	}
	b.progress = append(b.progress, p)
	return p
}

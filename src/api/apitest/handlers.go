package apitest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/theleywin/SkillShare/src/models"
	"golang.org/x/crypto/bcrypt"
)

func (b *Backend) routes() {
	app := b.app

	app.Post("/api/auth/register", b.register)
	app.Post("/api/auth/login", b.login)
	app.Post("/api/auth/logout", b.logout)

	api := app.Group("/api", b.protect)
	api.Get("/users/current", b.currentUser)
	api.Get("/users/:id", b.getUser)
	api.Patch("/users/:id", b.updateProfile)
	api.Post("/users/:id/photo", b.uploadPhoto)
	api.Get("/users/:id/posts", b.userPosts)
	api.Get("/users/:id/following", b.followList(func(u *user) []string { return u.following }))
	api.Get("/users/:id/followers", b.followList(func(u *user) []string { return u.followers }))
	api.Get("/users/:id/following/:followId", b.checkFollowing)
	api.Post("/users/:id/follow/:followId", b.toggleFollow(true))
	api.Delete("/users/:id/follow/:followId", b.toggleFollow(false))

	api.Get("/posts/shared/me", b.sharedPosts(true))
	api.Get("/posts/shared/user/:userId", b.sharedPosts(false))
	api.Delete("/posts/shared/:id", b.deleteShare)
	api.Get("/posts", b.listPosts)
	api.Post("/posts", b.createPost)
	api.Get("/posts/:id", b.getPost)
	api.Put("/posts/:id", b.updatePost)
	api.Delete("/posts/:id", b.deletePost)
	api.Post("/posts/:id/like", b.toggleLike)
	api.Post("/posts/:id/share", b.sharePost)
	api.Get("/posts/:postId/comments", b.listComments)
	api.Post("/posts/:postId/comments", b.createComment)
	api.Put("/posts/:postId/comments/:id", b.updateComment)
	api.Delete("/posts/:postId/comments/:id", b.deleteComment)

	api.Get("/learning-plans", b.listPlans(false))
	api.Get("/learning-plans/my-plans", b.listPlans(true))
	api.Post("/learning-plans", b.createPlan)
	api.Post("/learning-plans/tasks/:taskId/complete", b.completeTask)
	api.Put("/learning-plans/:id", b.updatePlan)
	api.Delete("/learning-plans/:id", b.deletePlan)
	api.Post("/learning-plans/:id/extend", b.extendPlan)

	api.Get("/progress-updates", b.listProgress)
	api.Post("/progress-updates", b.createProgress)
	api.Put("/progress-updates/:id", b.updateProgress)
	api.Delete("/progress-updates/:id", b.deleteProgress)

	api.Get("/notifications", b.listNotifications)
	api.Put("/notifications/:id/read", b.markRead)
	api.Delete("/notifications/:id", b.deleteNotification)
}

func message(c *fiber.Ctx, status int, text string) error {
	return c.Status(status).JSON(fiber.Map{"message": text})
}

func uid(c *fiber.Ctx) string {
	return c.Locals("uid").(string)
}

func (b *Backend) protect(c *fiber.Ctx) error {
	b.mu.Lock()
	id, ok := b.sessions[c.Cookies(sessionCookie)]
	b.mu.Unlock()
	if !ok {
		return message(c, fiber.StatusUnauthorized, "Unauthorized - No token provided")
	}
	c.Locals("uid", id)
	return c.Next()
}

// parse decodes and validates a JSON body, answering 400 itself on failure.
func parse(c *fiber.Ctx, dst any) bool {
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		_ = message(c, fiber.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := models.Validate(dst); err != nil {
		_ = message(c, fiber.StatusBadRequest, models.DescribeValidation(err))
		return false
	}
	return true
}

// --- auth ---

func (b *Backend) startSession(c *fiber.Ctx, userID string) {
	token := uuid.NewString()
	b.sessions[token] = userID
	c.Cookie(&fiber.Cookie{Name: sessionCookie, Value: token, Path: "/", HTTPOnly: true})
}

func (b *Backend) register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if strings.EqualFold(u.dto.Email, req.Email) {
			return message(c, fiber.StatusBadRequest, "Email already exists")
		}
	}
	u := b.addUser(req.Name, req.Email, req.Password)
	b.startSession(c, u.dto.ID)
	return c.Status(fiber.StatusCreated).JSON(b.userDto(u, u.dto.ID))
}

func (b *Backend) login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if strings.EqualFold(u.dto.Email, req.Email) &&
			bcrypt.CompareHashAndPassword([]byte(u.password), []byte(req.Password)) == nil {
			b.startSession(c, u.dto.ID)
			return c.JSON(b.userDto(u, u.dto.ID))
		}
	}
	return message(c, fiber.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) logout(c *fiber.Ctx) error {
	b.mu.Lock()
	delete(b.sessions, c.Cookies(sessionCookie))
	b.mu.Unlock()
	c.ClearCookie(sessionCookie)
	return message(c, fiber.StatusOK, "Logged out successfully")
}

// --- users ---

func (b *Backend) userDto(u *user, viewer string) models.UserDto {
	dto := u.dto
	dto.FollowerCount = len(u.followers)
	dto.FollowingCount = len(u.following)
	if viewer != u.dto.ID {
		dto.Email = ""
		if v, ok := b.users[viewer]; ok {
			dto.IsFollowing = contains(v.following, u.dto.ID)
		}
	}
	return dto
}

func (b *Backend) currentUser(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[uid(c)]
	if !ok {
		return message(c, fiber.StatusUnauthorized, "User not found")
	}
	return c.JSON(b.userDto(u, u.dto.ID))
}

func (b *Backend) getUser(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[c.Params("id")]
	if !ok {
		return message(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(b.userDto(u, uid(c)))
}

func (b *Backend) updateProfile(c *fiber.Ctx) error {
	if c.Params("id") != uid(c) {
		return message(c, fiber.StatusForbidden, "You can only update your own profile")
	}
	var req models.ProfileRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[uid(c)]
	if req.Name != nil {
		u.dto.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		u.dto.Bio = strings.TrimSpace(*req.Bio)
	}
	return c.JSON(b.userDto(u, u.dto.ID))
}

func (b *Backend) uploadPhoto(c *fiber.Ctx) error {
	if c.Params("id") != uid(c) {
		return message(c, fiber.StatusForbidden, "You can only update your own profile")
	}
	header, err := c.FormFile("file")
	if err != nil {
		return message(c, fiber.StatusBadRequest, "A file is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[uid(c)]
	u.dto.ProfilePhotoURL = mediaURL(header.Filename)
	return c.JSON(b.userDto(u, u.dto.ID))
}

func (b *Backend) followList(edges func(*user) []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		u, ok := b.users[c.Params("id")]
		if !ok {
			return message(c, fiber.StatusNotFound, "User not found")
		}
		dtos := []models.UserDto{}
		for _, id := range edges(u) {
			if other, ok := b.users[id]; ok {
				dtos = append(dtos, b.userDto(other, uid(c)))
			}
		}
		return c.JSON(dtos)
	}
}

func (b *Backend) checkFollowing(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[c.Params("id")]
	if !ok || !contains(u.following, c.Params("followId")) {
		return message(c, fiber.StatusNotFound, "Not following")
	}
	return c.JSON(models.FollowResult{Following: true})
}

func (b *Backend) toggleFollow(follow bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		me, target := c.Params("id"), c.Params("followId")
		if me != uid(c) {
			return message(c, fiber.StatusForbidden, "You can only change your own follows")
		}
		if me == target {
			return message(c, fiber.StatusBadRequest, "You cannot follow yourself")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		followee, ok := b.users[target]
		if !ok {
			return message(c, fiber.StatusNotFound, "User not found")
		}
		b.setFollow(me, target, follow)
		return c.JSON(models.FollowResult{Following: follow, FollowerCount: len(followee.followers)})
	}
}

func (b *Backend) setFollow(followerID, followeeID string, follow bool) {
	follower, followee := b.users[followerID], b.users[followeeID]
	if follow {
		if !contains(follower.following, followeeID) {
			follower.following = append(follower.following, followeeID)
			followee.followers = append(followee.followers, followerID)
			b.notify(followeeID, followerID, models.NotificationTypeFollow, "")
		}
		return
	}
	follower.following = without(follower.following, followeeID)
	followee.followers = without(followee.followers, followerID)
}

// --- posts ---

func (b *Backend) postDto(p *post, viewer string) models.PostDto {
	dto := p.dto
	dto.MediaURLs = append([]string{}, p.dto.MediaURLs...)
	if author, ok := b.users[p.author]; ok {
		dto.User = b.userDto(author, viewer)
	}
	dto.Likes = len(p.likedBy)
	dto.Liked = p.likedBy[viewer]
	return dto
}

func (b *Backend) findPost(id string) (int, *post) {
	for i, p := range b.posts {
		if p.dto.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (b *Backend) postsWhere(viewer string, keep func(*post) bool) []models.PostDto {
	dtos := []models.PostDto{}
	for i := len(b.posts) - 1; i >= 0; i-- {
		if keep(b.posts[i]) {
			dtos = append(dtos, b.postDto(b.posts[i], viewer))
		}
	}
	return dtos
}

func (b *Backend) listPosts(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(b.postsWhere(uid(c), func(*post) bool { return true }))
}

func (b *Backend) userPosts(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	author := c.Params("id")
	return c.JSON(b.postsWhere(uid(c), func(p *post) bool { return p.author == author }))
}

func formMedia(c *fiber.Ctx) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	urls := []string{}
	for _, header := range form.File["mediaFiles"] {
		urls = append(urls, mediaURL(header.Filename))
	}
	return urls
}

func mediaURL(filename string) string {
	return "https://media.skillshare.test/" + uuid.NewString() + "-" + filename
}

func (b *Backend) createPost(c *fiber.Ctx) error {
	content := strings.TrimSpace(c.FormValue("content"))
	media := formMedia(c)
	if content == "" && len(media) == 0 {
		return message(c, fiber.StatusBadRequest, "Post content or media is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.addPost(uid(c), content, media)
	return c.Status(fiber.StatusCreated).JSON(b.postDto(p, uid(c)))
}

func (b *Backend) getPost(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(c.Params("id"))
	if p == nil {
		return message(c, fiber.StatusNotFound, "Post not found")
	}
	return c.JSON(b.postDto(p, uid(c)))
}

func (b *Backend) updatePost(c *fiber.Ctx) error {
	content := strings.TrimSpace(c.FormValue("content"))
	media := formMedia(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(c.Params("id"))
	if p == nil {
		return message(c, fiber.StatusNotFound, "Post not found")
	}
	if p.author != uid(c) {
		return message(c, fiber.StatusForbidden, "You are not authorized to edit this post")
	}
	if content != "" {
		p.dto.Content = content
	}
	if len(media) > 0 {
		p.dto.MediaURLs = media
	}
	_, p.dto.UpdatedAt = b.nextID()
	return c.JSON(b.postDto(p, uid(c)))
}

func (b *Backend) deletePost(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, p := b.findPost(c.Params("id"))
	if p == nil {
		return message(c, fiber.StatusNotFound, "Post not found")
	}
	if p.author != uid(c) {
		return message(c, fiber.StatusForbidden, "You are not authorized to delete this post")
	}
	b.posts = append(b.posts[:i], b.posts[i+1:]...)
	comments := b.comments[:0]
	for _, cm := range b.comments {
		if cm.dto.PostID != p.dto.ID {
			comments = append(comments, cm)
		}
	}
	b.comments = comments
	shares := b.shares[:0]
	for _, s := range b.shares {
		if s.postID != p.dto.ID {
			shares = append(shares, s)
		}
	}
	b.shares = shares
	return message(c, fiber.StatusOK, "Post deleted successfully")
}

func (b *Backend) toggleLike(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(c.Params("id"))
	if p == nil {
		return message(c, fiber.StatusNotFound, "Post not found")
	}
	me := uid(c)
	if p.likedBy[me] {
		delete(p.likedBy, me)
	} else {
		p.likedBy[me] = true
		b.notify(p.author, me, models.NotificationTypeLike, p.dto.ID)
	}
	return c.JSON(models.LikeResult{Liked: p.likedBy[me], LikeCount: len(p.likedBy)})
}

// --- shares ---

func (b *Backend) shareDto(s *share, viewer string) (models.SharedPostDto, bool) {
	_, p := b.findPost(s.postID)
	if p == nil {
		return models.SharedPostDto{}, false
	}
	dto := models.SharedPostDto{
		ID:           s.id,
		OriginalPost: b.postDto(p, viewer),
		ShareComment: s.comment,
		SharedAt:     s.at,
	}
	if sharer, ok := b.users[s.sharer]; ok {
		dto.Sharer = b.userDto(sharer, viewer)
	}
	return dto, true
}

func (b *Backend) sharePost(c *fiber.Ctx) error {
	var req models.ShareRequest
	if len(bytes.TrimSpace(c.Body())) > 0 && !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(c.Params("id"))
	if p == nil {
		return message(c, fiber.StatusNotFound, "Post not found")
	}
	id, at := b.nextID()
	s := &share{id: id, postID: p.dto.ID, sharer: uid(c), comment: strings.TrimSpace(req.ShareComment), at: at}
	b.shares = append(b.shares, s)
	b.notify(p.author, uid(c), models.NotificationTypeShare, p.dto.ID)
	dto, _ := b.shareDto(s, uid(c))
	return c.Status(fiber.StatusCreated).JSON(dto)
}

func (b *Backend) sharedPosts(mine bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		sharer := c.Params("userId")
		if mine {
			sharer = uid(c)
		}
		dtos := []models.SharedPostDto{}
		for i := len(b.shares) - 1; i >= 0; i-- {
			if b.shares[i].sharer != sharer {
				continue
			}
			if dto, ok := b.shareDto(b.shares[i], uid(c)); ok {
				dtos = append(dtos, dto)
			}
		}
		return c.JSON(dtos)
	}
}

func (b *Backend) deleteShare(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.shares {
		if s.id != c.Params("id") {
			continue
		}
		if s.sharer != uid(c) {
			return message(c, fiber.StatusForbidden, "You are not authorized to delete this shared post")
		}
		b.shares = append(b.shares[:i], b.shares[i+1:]...)
		return message(c, fiber.StatusOK, "Shared post deleted successfully")
	}
	return message(c, fiber.StatusNotFound, "Shared post not found")
}

// --- comments ---

func (b *Backend) commentDto(cm *comment, viewer string) models.CommentDto {
	dto := cm.dto
	if author, ok := b.users[cm.author]; ok {
		dto.User = b.userDto(author, viewer)
	}
	return dto
}

func (b *Backend) listComments(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dtos := []models.CommentDto{}
	for _, cm := range b.comments {
		if cm.dto.PostID == c.Params("postId") {
			dtos = append(dtos, b.commentDto(cm, uid(c)))
		}
	}
	return c.JSON(dtos)
}

func (b *Backend) createComment(c *fiber.Ctx) error {
	var req models.CommentRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p := b.findPost(c.Params("postId"))
	if p == nil {
		return message(c, fiber.StatusNotFound, "Post not found")
	}
	cm := b.addComment(p, uid(c), req.Content)
	return c.Status(fiber.StatusCreated).JSON(b.commentDto(cm, uid(c)))
}

func (b *Backend) findComment(c *fiber.Ctx) (int, *comment) {
	for i, cm := range b.comments {
		if cm.dto.ID == c.Params("id") && cm.dto.PostID == c.Params("postId") {
			return i, cm
		}
	}
	return -1, nil
}

func (b *Backend) updateComment(c *fiber.Ctx) error {
	var req models.CommentRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, cm := b.findComment(c)
	if cm == nil {
		return message(c, fiber.StatusNotFound, "Comment not found")
	}
	if cm.author != uid(c) {
		return message(c, fiber.StatusForbidden, "You are not authorized to edit this comment")
	}
	cm.dto.Content = strings.TrimSpace(req.Content)
	_, cm.dto.UpdatedAt = b.nextID()
	return c.JSON(b.commentDto(cm, uid(c)))
}

func (b *Backend) deleteComment(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, cm := b.findComment(c)
	if cm == nil {
		return message(c, fiber.StatusNotFound, "Comment not found")
	}
	_, p := b.findPost(cm.dto.PostID)
	if cm.author != uid(c) && (p == nil || p.author != uid(c)) {
		return message(c, fiber.StatusForbidden, "You are not authorized to delete this comment")
	}
	b.comments = append(b.comments[:i], b.comments[i+1:]...)
	if p != nil && p.dto.CommentCount > 0 {
		p.dto.CommentCount--
	}
	return message(c, fiber.StatusOK, "Comment deleted successfully")
}

// --- learning plans ---

func (b *Backend) planDto(p *plan, viewer string) models.LearningPlanDto {
	dto := p.dto
	dto.Tasks = make([]models.TaskDto, 0, len(p.tasks))
	for _, task := range p.tasks {
		dto.Tasks = append(dto.Tasks, task.ToDto())
	}
	if owner, ok := b.users[p.owner]; ok {
		dto.Owner = b.userDto(owner, viewer)
	}
	return dto
}

func (b *Backend) plansOf(viewer string, mine bool) []models.LearningPlanDto {
	dtos := []models.LearningPlanDto{}
	for i := len(b.plans) - 1; i >= 0; i-- {
		if !mine || b.plans[i].owner == viewer {
			dtos = append(dtos, b.planDto(b.plans[i], viewer))
		}
	}
	return dtos
}

func (b *Backend) listPlans(mine bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return c.JSON(b.plansOf(uid(c), mine))
	}
}

func (b *Backend) ownedPlan(c *fiber.Ctx) (int, *plan, bool) {
	for i, p := range b.plans {
		if p.dto.ID != c.Params("id") {
			continue
		}
		if p.owner != uid(c) {
			_ = message(c, fiber.StatusForbidden, "You are not authorized to modify this learning plan")
			return i, nil, false
		}
		return i, p, true
	}
	_ = message(c, fiber.StatusNotFound, "Learning plan not found")
	return -1, nil, false
}

func (b *Backend) createPlan(c *fiber.Ctx) error {
	var req models.LearningPlanRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.addPlan(uid(c), req)
	return c.Status(fiber.StatusCreated).JSON(b.planDto(p, uid(c)))
}

func (b *Backend) updatePlan(c *fiber.Ctx) error {
	var req models.LearningPlanRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p, ok := b.ownedPlan(c)
	if !ok {
		return nil
	}
	p.dto.Topic = strings.TrimSpace(req.Topic)
	p.dto.Resources = req.Resources
	p.dto.Timeline = req.Timeline
	p.dto.StartDate = req.StartDate
	p.dto.EndDate = req.EndDate
	_, at := b.nextID()
	p.tasks = models.MergeTasks(p.tasks, req.Tasks, at)
	return c.JSON(b.planDto(p, uid(c)))
}

func (b *Backend) deletePlan(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, _, ok := b.ownedPlan(c)
	if !ok {
		return nil
	}
	b.plans = append(b.plans[:i], b.plans[i+1:]...)
	return message(c, fiber.StatusOK, "Learning plan deleted successfully")
}

func (b *Backend) extendPlan(c *fiber.Ctx) error {
	var req models.ExtendRequest
	if !parse(c, &req) {
		return nil
	}
	end, err := models.ParsePlanDate(req.EndDate)
	if err != nil {
		return message(c, fiber.StatusBadRequest, "A valid end date is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p, ok := b.ownedPlan(c)
	if !ok {
		return nil
	}
	p.dto.EndDate = &end
	p.dto.Extended = true

	plans := b.plansOf(uid(c), true)
	models.SortPlanDtosByEndDate(plans)
	return c.JSON(plans)
}

func (b *Backend) completeTask(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.plans {
		for i := range p.tasks {
			task := &p.tasks[i]
			if task.Id.Hex() != c.Params("taskId") {
				continue
			}
			if p.owner != uid(c) {
				return message(c, fiber.StatusForbidden, "You are not authorized to complete this task")
			}
			if !task.Completed {
				_, at := b.nextID()
				task.Completed, task.CompletedAt = true, &at
			}
			return c.JSON(task.ToDto())
		}
	}
	return message(c, fiber.StatusNotFound, "Task not found")
}

// --- progress updates ---

func (b *Backend) progressDto(p *progress, viewer string) models.ProgressUpdateDto {
	dto := p.dto
	if author, ok := b.users[p.author]; ok {
		dto.User = b.userDto(author, viewer)
	}
	return dto
}

func (b *Backend) listProgress(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dtos := []models.ProgressUpdateDto{}
	for i := len(b.progress) - 1; i >= 0; i-- {
		dtos = append(dtos, b.progressDto(b.progress[i], uid(c)))
	}
	return c.JSON(dtos)
}

func (b *Backend) createProgress(c *fiber.Ctx) error {
	var req models.ProgressUpdateRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.addProgress(uid(c), req)
	return c.Status(fiber.StatusCreated).JSON(b.progressDto(p, uid(c)))
}

func (b *Backend) findProgress(c *fiber.Ctx) (int, *progress, bool) {
	for i, p := range b.progress {
		if p.dto.ID != c.Params("id") {
			continue
		}
		if p.author != uid(c) {
			_ = message(c, fiber.StatusForbidden, "You are not authorized to edit this progress update")
			return i, nil, false
		}
		return i, p, true
	}
	_ = message(c, fiber.StatusNotFound, "Progress update not found")
	return -1, nil, false
}

func (b *Backend) updateProgress(c *fiber.Ctx) error {
	var req models.ProgressUpdateRequest
	if !parse(c, &req) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, p, ok := b.findProgress(c)
	if !ok {
		return nil
	}
	p.dto.Skill = strings.TrimSpace(req.Skill)
	p.dto.Content = strings.TrimSpace(req.Content)
	_, p.dto.UpdatedAt = b.nextID()
	return c.JSON(b.progressDto(p, uid(c)))
}

func (b *Backend) deleteProgress(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, _, ok := b.findProgress(c)
	if !ok {
		return nil
	}
	b.progress = append(b.progress[:i], b.progress[i+1:]...)
	return c.SendStatus(fiber.StatusNoContent)
}

// --- notifications ---

func (b *Backend) notify(recipient, actor string, kind models.NotificationType, postID string) {
	if recipient == actor {
		return
	}
	id, at := b.nextID()
	var related *models.UserDto
	actorName := ""
	if u, ok := b.users[actor]; ok {
		dto := b.userDto(u, recipient)
		related, actorName = &dto, dto.Name
	}
	b.notifications = append(b.notifications, &notification{
		recipient: recipient,
		dto: models.NotificationDto{
			ID:            id,
			Type:          kind,
			Message:       models.NotificationMessage(kind, actorName),
			RelatedUser:   related,
			RelatedPostID: postID,
			CreatedAt:     at,
		},
	})
}

func (b *Backend) listNotifications(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dtos := []models.NotificationDto{}
	for i := len(b.notifications) - 1; i >= 0; i-- {
		if b.notifications[i].recipient == uid(c) {
			dtos = append(dtos, b.notifications[i].dto)
		}
	}
	return c.JSON(dtos)
}

func (b *Backend) markRead(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range b.notifications {
		if n.dto.ID == c.Params("id") && n.recipient == uid(c) {
			n.dto.Read = true
			return c.JSON(n.dto)
		}
	}
	return message(c, fiber.StatusNotFound, "Notification not found or you don't have permission to update it")
}

func (b *Backend) deleteNotification(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.notifications {
		if n.dto.ID == c.Params("id") && n.recipient == uid(c) {
			b.notifications = append(b.notifications[:i], b.notifications[i+1:]...)
			return message(c, fiber.StatusOK, "Notification deleted successfully")
		}
	}
	return message(c, fiber.StatusNotFound, "Notification not found or you don't have permission to delete it")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	kept := []string{}
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateLoginRequest(t *testing.T) {
	err := Validate(LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)

	msg := DescribeValidation(err)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "password is required")

	assert.NoError(t, Validate(LoginRequest{Email: "ada@example.com", Password: "secret"}))
}

func TestValidateRejectsBlankContent(t *testing.T) {
	err := Validate(CommentRequest{Content: "   "})
	require.Error(t, err)
	assert.Equal(t, "content is required", DescribeValidation(err))
}

func TestValidatePlanDates(t *testing.T) {
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	err := Validate(LearningPlanRequest{Topic: "Go", StartDate: &start, EndDate: &end})
	require.Error(t, err)
	assert.Equal(t, "endDate must not be before startDate", DescribeValidation(err))

	assert.NoError(t, Validate(LearningPlanRequest{Topic: "Go", EndDate: &end}))
}

func TestValidateTasksDive(t *testing.T) {
	err := Validate(LearningPlanRequest{Topic: "Rust", Tasks: []TaskRequest{{Description: ""}}})
	require.Error(t, err)
	assert.Contains(t, DescribeValidation(err), "description is required")
}

func TestValidateProfileRequest(t *testing.T) {
	blank := "  "
	bio := "Gopher"
	assert.Error(t, Validate(ProfileRequest{Name: &blank}))
	assert.NoError(t, Validate(ProfileRequest{Bio: &bio}))
}

func TestParsePlanDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-05-01":           time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		"2024-05-01T10:30:00":  time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		`"2024-05-01"`:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		"2024-05-01T10:30:00Z": time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := ParsePlanDate(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), input)
	}

	_, err := ParsePlanDate("next week")
	assert.Error(t, err)
}

func TestMergeTasksKeepsIdentityAndCompletion(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	done := now.Add(-time.Hour)
	kept := Task{Id: primitive.NewObjectID(), Description: "read", Completed: true, CompletedAt: &done}
	dropped := Task{Id: primitive.NewObjectID(), Description: "drop"}

	tasks := MergeTasks([]Task{kept, dropped}, []TaskRequest{
		{ID: kept.Id.Hex(), Description: " read chapter 1 ", Completed: false},
		{Description: "write notes", Completed: true},
	}, now)

	require.Len(t, tasks, 2)
	assert.Equal(t, kept.Id, tasks[0].Id)
	assert.Equal(t, "read chapter 1", tasks[0].Description)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, &done, tasks[0].CompletedAt)

	assert.NotEqual(t, dropped.Id, tasks[1].Id)
	assert.True(t, tasks[1].Completed)
	require.NotNil(t, tasks[1].CompletedAt)
	assert.True(t, now.Equal(*tasks[1].CompletedAt))
}

func TestUserToDto(t *testing.T) {
	owner := User{Id: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	viewer := User{Id: primitive.NewObjectID(), Following: []primitive.ObjectID{owner.Id}}
	owner.Followers = []primitive.ObjectID{viewer.Id}

	self := owner.ToDto(&owner)
	assert.Equal(t, "ada@example.com", self.Email)
	assert.False(t, self.IsFollowing)

	other := owner.ToDto(&viewer)
	assert.Empty(t, other.Email)
	assert.True(t, other.IsFollowing)
	assert.Equal(t, 1, other.FollowerCount)

	anonymous := owner.ToDto(nil)
	assert.Empty(t, anonymous.Email)
}

func TestPostToDto(t *testing.T) {
	viewer := primitive.NewObjectID()
	post := Post{Id: primitive.NewObjectID(), Content: "hi", LikedBy: []primitive.ObjectID{primitive.NewObjectID(), viewer}}

	dto := post.ToDto(UserDto{ID: "u1", Name: "Ada"}, viewer)

	assert.Equal(t, 2, dto.Likes)
	assert.True(t, dto.Liked)
	assert.NotNil(t, dto.MediaURLs)
	assert.Equal(t, "Ada", dto.User.Name)
}

func TestNotificationMessage(t *testing.T) {
	assert.Equal(t, "Ada liked your post", NotificationMessage(NotificationTypeLike, "Ada"))
	assert.Equal(t, "Someone started following you", NotificationMessage(NotificationTypeFollow, ""))
}

func TestSortPlansByEndDate(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	plans := []LearningPlan{
		{Topic: "none", CreatedAt: created},
		{Topic: "late", EndDate: day(20), CreatedAt: created},
		{Topic: "early-second", EndDate: day(5), CreatedAt: created.Add(time.Hour)},
		{Topic: "early-first", EndDate: day(5), CreatedAt: created},
	}

	SortPlansByEndDate(plans)

	topics := make([]string, 0, len(plans))
	for _, p := range plans {
		topics = append(topics, p.Topic)
	}
	assert.Equal(t, []string{"early-first", "early-second", "late", "none"}, topics)
}

func TestSortPlanDtosByEndDateMatchesStoredOrder(t *testing.T) {
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	dtos := []LearningPlanDto{
		{Topic: "open", CreatedAt: created},
		{Topic: "newer", EndDate: &end, CreatedAt: created.Add(time.Minute)},
		{Topic: "older", EndDate: &end, CreatedAt: created},
	}

	SortPlanDtosByEndDate(dtos)

	assert.Equal(t, "older", dtos[0].Topic)
	assert.Equal(t, "newer", dtos[1].Topic)
	assert.Equal(t, "open", dtos[2].Topic)
}

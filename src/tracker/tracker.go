// Package tracker derives counts shown next to reconciled lists. Everything
// here is recomputed from the list on every call.
package tracker

import (
	"math"

	"github.com/theleywin/SkillShare/src/models"
)

// ProgressPercent is the share of completed tasks rounded to a whole
// percent. An empty plan is at 0.
func ProgressPercent(tasks []models.TaskDto) int {
	if len(tasks) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(CompletedCount(tasks)) / float64(len(tasks))))
}

func CompletedCount(tasks []models.TaskDto) int {
	n := 0
	for _, task := range tasks {
		if task.Completed {
			n++
		}
	}
	return n
}

func UnreadCount(notifications []models.NotificationDto) int {
	n := 0
	for _, notification := range notifications {
		if !notification.Read {
			n++
		}
	}
	return n
}

// CountLikes sums the like counts of posts.
func CountLikes(posts []models.PostDto) int {
	n := 0
	for _, post := range posts {
		n += post.Likes
	}
	return n
}

func CountComments(posts []models.PostDto) int {
	n := 0
	for _, post := range posts {
		n += post.CommentCount
	}
	return n
}

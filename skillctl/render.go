package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/tracker"
)

const timeLayout = "2006-01-02 15:04"

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func printPosts(out io.Writer, posts []models.PostDto) {
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts yet")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tAUTHOR\tPOSTED\tLIKES\tCOMMENTS\tCONTENT")
	for _, p := range posts {
		likes := fmt.Sprint(p.Likes)
		if p.Liked {
			likes += "*"
		}
		content := p.Content
		if len(p.MediaURLs) > 0 {
			content += fmt.Sprintf(" [%d media]", len(p.MediaURLs))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.User.Name, p.CreatedAt.Local().Format(timeLayout), likes, p.CommentCount, oneLine(content))
	}
	w.Flush()
	fmt.Fprintf(out, "%d posts, %d likes, %d comments\n", len(posts), tracker.CountLikes(posts), tracker.CountComments(posts))
}

func printComments(out io.Writer, comments []models.CommentDto) {
	if len(comments) == 0 {
		fmt.Fprintln(out, "No comments yet")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tAUTHOR\tPOSTED\tCOMMENT")
	for _, c := range comments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.User.Name, c.CreatedAt.Local().Format(timeLayout), oneLine(c.Content))
	}
	w.Flush()
}

func printShared(out io.Writer, shared []models.SharedPostDto) {
	if len(shared) == 0 {
		fmt.Fprintln(out, "Nothing shared yet")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tSHARED BY\tSHARED\tPOST\tAUTHOR\tCOMMENT")
	for _, s := range shared {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Sharer.Name, s.SharedAt.Local().Format(timeLayout), s.OriginalPost.ID, s.OriginalPost.User.Name, oneLine(s.ShareComment))
	}
	w.Flush()
}

func printPlans(out io.Writer, plans []models.LearningPlanDto) {
	if len(plans) == 0 {
		fmt.Fprintln(out, "No learning plans yet")
		return
	}
	for _, p := range plans {
		extended := ""
		if p.Extended {
			extended = " (extended)"
		}
		fmt.Fprintf(out, "%s  %s by %s  %s -> %s%s  %d%% done\n",
			p.ID, p.Topic, p.Owner.Name, formatDate(p.StartDate), formatDate(p.EndDate), extended, tracker.ProgressPercent(p.Tasks))
		for _, t := range p.Tasks {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			fmt.Fprintf(out, "    %s %s %s (due %s)\n", mark, t.ID, t.Description, formatDate(t.DueDate))
		}
	}
}

func printProgress(out io.Writer, updates []models.ProgressUpdateDto) {
	if len(updates) == 0 {
		fmt.Fprintln(out, "No progress updates yet")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tAUTHOR\tPOSTED\tSKILL\tUPDATE")
	for _, u := range updates {
		skill := u.Skill
		if skill == "" {
			skill = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.User.Name, u.CreatedAt.Local().Format(timeLayout), skill, oneLine(u.Content))
	}
	w.Flush()
}

func printUsers(out io.Writer, users []models.UserDto) {
	if len(users) == 0 {
		fmt.Fprintln(out, "Nobody here yet")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tNAME\tFOLLOWERS\tFOLLOWING\tYOU FOLLOW")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", u.ID, u.Name, u.FollowerCount, u.FollowingCount, yesNo(u.IsFollowing))
	}
	w.Flush()
}

func printNotifications(out io.Writer, notifications []models.NotificationDto) {
	if len(notifications) == 0 {
		fmt.Fprintln(out, "No notifications")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tWHEN\tNEW\tMESSAGE")
	for _, n := range notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.CreatedAt.Local().Format(timeLayout), yesNo(!n.Read), n.Message)
	}
	w.Flush()
	fmt.Fprintf(out, "%d unread\n", tracker.UnreadCount(notifications))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 72 {
		return s[:69] + "..."
	}
	return s
}

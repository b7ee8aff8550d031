package main

import (
	"chat-memory/domain"
	"chat-memory/infrastructure/cache"
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"chat-memory/runtime/workers"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Message and token totals for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.durable()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			messages := storage.NewMessageRepository(db, a.log)
			count, err := messages.CountByUser(ctx, args[0])
			if err != nil {
				return err
			}
			tokens, err := messages.SumTokensByUser(ctx, args[0])
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "User", "Messages", "Tokens")
			table.Append([]string{args[0], strconv.FormatInt(count, 10), strconv.FormatInt(tokens, 10)})
			table.Render()
			return nil
		},
	}
}

func conversationsCmd(a *app) *cobra.Command {
	var status string
	var page, size int
	cmd := &cobra.Command{
		Use:   "conversations <user-id>",
		Short: "List the conversations of a user, most recently active first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionStatus := domain.SessionStatus(strings.ToUpper(status))
			if !sessionStatus.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			db, err := a.durable()
			if err != nil {
				return err
			}
			sessions, err := storage.NewSessionRepository(db, a.log).
				ListByUser(cmd.Context(), args[0], sessionStatus, page, size)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "Conversation", "Title", "Status", "Messages", "Tokens", "Last active")
			for _, s := range sessions {
				table.Append([]string{
					s.ConversationID,
					truncate(s.Title, 40),
					a.status(s.Status),
					strconv.Itoa(s.MessageCount),
					strconv.Itoa(s.TotalTokens),
					formatTime(s.LastActiveAt),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", string(domain.SessionActive), "ACTIVE|ARCHIVED|DELETED")
	cmd.Flags().IntVar(&page, "page", 0, "Page, starting at 0")
	cmd.Flags().IntVarP(&size, "size", "n", 20, "Page size")
	return cmd
}

func historyCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <conversation-id>",
		Short: "Print the most recent durable messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.config.HistoryWindow
			}
			db, err := a.durable()
			if err != nil {
				return err
			}
			messages, err := storage.NewMessageRepository(db, a.log).ListByConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(messages) > limit {
				messages = messages[len(messages)-limit:]
			}
			a.printMessages(cmd, messages)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Messages to show (default HISTORY_WINDOW)")
	return cmd
}

func messagesCmd(a *app) *cobra.Command {
	var page, size int
	var from, to string
	cmd := &cobra.Command{
		Use:   "messages <user-id>",
		Short: "List the messages of a user across conversations, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.durable()
			if err != nil {
				return err
			}
			repository := storage.NewMessageRepository(db, a.log)

			var messages []domain.Message
			if from != "" || to != "" {
				fromTime, toTime, err := parseRange(from, to)
				if err != nil {
					return err
				}
				messages, err = repository.ListByUserBetween(cmd.Context(), args[0], fromTime, toTime)
				if err != nil {
					return err
				}
			} else {
				messages, err = repository.ListByUser(cmd.Context(), args[0], page, size)
				if err != nil {
					return err
				}
			}
			a.printMessages(cmd, messages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page, starting at 0")
	cmd.Flags().IntVarP(&size, "size", "n", 20, "Page size")
	cmd.Flags().StringVar(&from, "from", "", "Lower bound, RFC3339 (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Upper bound, RFC3339 (inclusive)")
	return cmd
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	fromTime, toTime := time.Unix(0, 0).UTC(), time.Now().UTC()
	var err error
	if from != "" {
		if fromTime, err = time.Parse(time.RFC3339, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if toTime, err = time.Parse(time.RFC3339, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
	}
	if toTime.Before(fromTime) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return fromTime, toTime, nil
}

func (a *app) printMessages(cmd *cobra.Command, messages []domain.Message) {
	table := newTable(cmd.OutOrStdout(), "Created", "Role", "Content", "Tokens", "Latency ms", "Model")
	for _, m := range messages {
		table.Append([]string{
			formatTime(m.CreatedAt),
			a.role(m.Role),
			truncate(strings.ReplaceAll(m.Content, "\n", " "), 80),
			optionalInt(m.TokenUsed),
			optionalInt(m.ResponseTimeMs),
			optionalString(m.ModelName),
		})
	}
	table.Render()
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-id> <user-id>",
		Short: "Soft delete a conversation owned by the user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.durable()
			if err != nil {
				return err
			}
			deleted, err := storage.NewSessionRepository(db, a.log).SoftDelete(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing deleted: %s is not an ACTIVE conversation of %s\n", args[0], args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.highlight("Deleted"), args[0])
			return nil
		},
	}
}

func (a *app) janitor(config workers.JanitorConfig) (*workers.Janitor, error) {
	db, err := a.durable()
	if err != nil {
		return nil, err
	}
	return workers.NewJanitor(
		storage.NewMessageRepository(db, a.log),
		storage.NewSessionRepository(db, a.log),
		a.log, observability.NewNopMetrics(), config)
}

func sweepCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete durable messages older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				olderThan = a.config.RetentionPeriod
			}
			janitor, err := a.janitor(workers.JanitorConfig{RetentionPeriod: olderThan})
			if err != nil {
				return err
			}
			deleted, err := janitor.SweepRetention(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d messages older than %s\n", a.highlight("Deleted"), deleted, olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Retention period (default RETENTION_PERIOD)")
	return cmd
}

func archiveCmd(a *app) *cobra.Command {
	var idleAfter time.Duration
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive ACTIVE conversations idle for too long",
		RunE: func(cmd *cobra.Command, args []string) error {
			if idleAfter <= 0 {
				idleAfter = a.config.ArchiveIdleAfter
			}
			janitor, err := a.janitor(workers.JanitorConfig{ArchiveIdleAfter: idleAfter})
			if err != nil {
				return err
			}
			archived, err := janitor.ArchiveIdle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d conversations idle for %s\n", a.highlight("Archived"), archived, idleAfter)
			return nil
		},
	}
	cmd.Flags().DurationVar(&idleAfter, "idle-after", 0, "Idle period (default ARCHIVE_IDLE_AFTER)")
	return cmd
}

func cacheInspectCmd(a *app) *cobra.Command {
	var prefix string
	var limit int
	cmd := &cobra.Command{
		Use:   "cache-inspect",
		Short: "Decode the cache keys under a prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := a.cacheDB()
			if err != nil {
				return err
			}
			defer kv.Close()

			rows, err := cache.Inspect(kv, prefix, limit)
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "Key", "Expires", "Detail")
			for _, row := range rows {
				table.Append([]string{row.Key, formatTime(row.ExpiresAt), a.detail(row)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", cache.ConversationPrefix, "Key prefix to scan")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum keys")
	return cmd
}

func (a *app) detail(row cache.InspectRow) string {
	switch {
	case row.Err != nil:
		return "ERROR " + row.Err.Error()
	case row.Message != nil:
		return fmt.Sprintf("%s %s", a.role(row.Message.Role), truncate(row.Message.Content, 60))
	default:
		short := lo.Map(row.IDs, func(id string, _ int) string { return truncate(id, 11) })
		return fmt.Sprintf("%d ids [%s]", len(row.IDs), strings.Join(short, " "))
	}
}

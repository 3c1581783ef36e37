package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func NewTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List memories most-recent-first",
		Args:  cobra.NoArgs,
		RunE:  runTimeline,
	}

	cmd.Flags().StringP("entity", "e", "", "Only memories mentioning this entity")
	cmd.Flags().String("since", "", "Only memories created after this date (YYYY-MM-DD) or duration (e.g. 72h)")
	return cmd
}

func runTimeline(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	entity, _ := cmd.Flags().GetString("entity")
	sinceFlag, _ := cmd.Flags().GetString("since")

	var since time.Time
	if sinceFlag != "" {
		since, err = parseSince(sinceFlag)
		if err != nil {
			return err
		}
	}

	memories, err := a.engine.Timeline(cmd.Context(), entity, since)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		type entry struct {
			ID        string    `json:"id"`
			Type      string    `json:"type"`
			Content   string    `json:"content"`
			Entities  []string  `json:"entities"`
			CreatedAt time.Time `json:"created_at"`
		}
		entries := make([]entry, 0, len(memories))
		for _, m := range memories {
			entries = append(entries, entry{
				ID:        m.ID,
				Type:      string(m.Type),
				Content:   m.Content,
				Entities:  m.Entities,
				CreatedAt: m.CreatedAt,
			})
		}
		return outputJSON(cmd, entries)
	}

	for _, m := range memories {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s] %s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.Type, m.ID, truncate(m.Content, 70))
	}
	return nil
}

func parseSince(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().UTC().Add(-d), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q", s)
}

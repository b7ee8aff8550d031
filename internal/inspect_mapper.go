package internal

import (
	"chat-memory/infrastructure/cache"
	"fmt"
	"strings"

	"github.com/mama165/sdk-go/database"
)

const (
	InspectEndpoint  = "/inspect"
	inspectDetailMax = 80
)

// CacheRowMapper renders a cache entry for the Badger inspector.
func CacheRowMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	message, ids, err := cache.DecodeEntry(key, val)
	switch {
	case err != nil:
		row.Type = "CORRUPT"
		row.Detail = "Error: " + err.Error()
	case message != nil:
		row.Type = "MESSAGE"
		row.Namespace = message.ConversationID
		row.EntityID = message.ID
		row.Timestamp = message.CreatedAt.Format("15:04:05")
		row.Detail = fmt.Sprintf("%s: %s", message.Role, truncate(message.Content, inspectDetailMax))
	case strings.HasPrefix(key, cache.ConversationPrefix):
		row.Type = "CONVERSATION"
		row.Namespace = strings.TrimPrefix(key, cache.ConversationPrefix)
		row.Detail = fmt.Sprintf("%d ids", len(ids))
		if len(ids) > 0 {
			row.EntityID = ids[len(ids)-1]
		}
	}
	return row
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

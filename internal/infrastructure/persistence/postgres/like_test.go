package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scholar-sync-api/internal/domain/repository"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `plain query`, escapeLike(`plain query`))
	assert.Equal(t, `100\% done`, escapeLike(`100% done`))
	assert.Equal(t, `snake\_case`, escapeLike(`snake_case`))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, `\\\%\_`, escapeLike(`\%_`))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%algebra%`, containsPattern(`algebra`))
	assert.Equal(t, `%50\%%`, containsPattern(`50%`))
	assert.Equal(t, `%a\_b%`, containsPattern(`a_b`))
}

func TestNotificationOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", notificationOrderClause(repository.Sort{}))
	assert.Equal(t, "created_at ASC", notificationOrderClause(repository.NewSort("created_at", repository.SortOrderAsc)))
	assert.Equal(t, "is_read DESC", notificationOrderClause(repository.NewSort("is_read", repository.SortOrderDesc)))
	assert.Equal(t, "type ASC", notificationOrderClause(repository.NewSort("type", repository.SortOrderAsc)))
	// 未知字段不进入 SQL，回落到默认列
	assert.Equal(t, "created_at DESC", notificationOrderClause(repository.NewSort("user_id; DROP TABLE", repository.SortOrderDesc)))
}

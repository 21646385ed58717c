package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE/ILIKE 的通配符，使用户输入按字面子串匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// containsPattern 构造大小写不敏感的子串匹配模式
func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

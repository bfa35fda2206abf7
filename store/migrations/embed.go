// Package migrations 内嵌 SQLite 影片索引的建表脚本。
package migrations

import "embed"

// FS 在编译期内嵌全部迁移脚本。
//
//go:embed *.sql
var FS embed.FS

package database

import (
	"fmt"

	"github.com/GuiaBolso/darwin"

	"github.com/lunban/lunban/pkg/logger"
)

// migrations 数据库结构演进脚本
//
// 班次记录是稀疏的：只保存在岗班次（早/中/夜），没有记录的
// 日期按休息处理，所以 (employee_id, shift_date) 必须唯一。
var migrations = []darwin.Migration{
	{
		Version:     1,
		Description: "创建员工表",
		Script: `CREATE TABLE IF NOT EXISTS employees (
			id         UUID PRIMARY KEY,
			name       VARCHAR(64)  NOT NULL,
			code       VARCHAR(32)  NOT NULL UNIQUE,
			phone      VARCHAR(32)  NOT NULL DEFAULT '',
			email      VARCHAR(128) NOT NULL DEFAULT '',
			role       VARCHAR(32)  NOT NULL DEFAULT 'staff',
			status     VARCHAR(16)  NOT NULL DEFAULT 'active',
			hire_date  VARCHAR(10)  NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
	},
	{
		Version:     2,
		Description: "创建班次记录表",
		Script: `CREATE TABLE IF NOT EXISTS shift_assignments (
			id          UUID PRIMARY KEY,
			employee_id UUID        NOT NULL REFERENCES employees(id),
			day         INT         NOT NULL,
			shift       SMALLINT    NOT NULL,
			shift_date  DATE        NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_assignment_employee_date UNIQUE (employee_id, shift_date)
		)`,
	},
	{
		Version:     3,
		Description: "按日期查询班次的索引",
		Script:      `CREATE INDEX IF NOT EXISTS idx_shift_assignments_date ON shift_assignments (shift_date)`,
	},
}

// Migrate 执行未应用的数据库迁移
func (db *DB) Migrate() error {
	driver := darwin.NewGenericDriver(db.DB, darwin.PostgresDialect{})
	if err := darwin.New(driver, migrations, nil).Migrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	logger.Info().Int("migrations", len(migrations)).Msg("数据库结构就绪")
	return nil
}
package model

// 多对多关联表。gorm 的隐式 join 表不带独立主键，
// 旧库每张关联表都有自增 id，这里显式建模保持 schema 不变。

type SysUserRole struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"column:user_id;uniqueIndex:uk_user_role;not null" json:"user_id"`
	RoleID int64 `gorm:"column:role_id;uniqueIndex:uk_user_role;not null" json:"role_id"`
}

func (SysUserRole) TableName() string { return "sys_user_role" }

type SysRoleMenu struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID int64 `gorm:"column:role_id;uniqueIndex:uk_role_menu;not null" json:"role_id"`
	MenuID int64 `gorm:"column:menu_id;uniqueIndex:uk_role_menu;not null" json:"menu_id"`
}

func (SysRoleMenu) TableName() string { return "sys_role_menu" }

type SysRoleDataScope struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID      int64 `gorm:"column:role_id;uniqueIndex:uk_role_data_scope;not null" json:"role_id"`
	DataScopeID int64 `gorm:"column:data_scope_id;uniqueIndex:uk_role_data_scope;not null" json:"data_scope_id"`
}

func (SysRoleDataScope) TableName() string { return "sys_role_data_scope" }

type SysDataScopeRule struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DataScopeID int64 `gorm:"column:data_scope_id;uniqueIndex:uk_data_scope_rule;not null" json:"data_scope_id"`
	DataRuleID  int64 `gorm:"column:data_rule_id;uniqueIndex:uk_data_scope_rule;not null" json:"data_rule_id"`
}

func (SysDataScopeRule) TableName() string { return "sys_data_scope_rule" }

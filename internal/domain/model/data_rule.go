package model

import "time"

// 数据规则逻辑运算符
const (
	RuleOperatorAnd = 0
	RuleOperatorOr  = 1
)

// 数据规则比较表达式
const (
	RuleExprEq    = 0 // ==
	RuleExprNe    = 1 // !=
	RuleExprGt    = 2 // >
	RuleExprGe    = 3 // >=
	RuleExprLt    = 4 // <
	RuleExprLe    = 5 // <=
	RuleExprIn    = 6 // in
	RuleExprNotIn = 7 // not_in
)

// SysDataRule 对应 sys_data_rule 表（单条行级过滤条件）
// model 为目标模型名（对应数据权限模型注册表的 key），column 为模型字段

type SysDataRule struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:500;uniqueIndex:uk_data_rule_name;not null" json:"name"`
	Model      string    `gorm:"size:50;not null" json:"model"`
	Column     string    `gorm:"size:20;not null" json:"column"`
	Operator   int       `gorm:"not null" json:"operator"`
	Expression int       `gorm:"not null" json:"expression"`
	Value      string    `gorm:"size:255;not null" json:"value"`
	CreatedAt  time.Time `gorm:"column:created_time" json:"created_time"`
	UpdatedAt  time.Time `gorm:"column:updated_time" json:"updated_time"`
}

func (SysDataRule) TableName() string { return "sys_data_rule" }

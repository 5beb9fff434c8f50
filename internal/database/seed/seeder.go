package seed

import (
	"context"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/logging"
	"go-sysadmin/pkg/crypto"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder 初始化固定数据。整批在一个事务内完成，
// 以 admin 用户是否存在作为幂等探针：存在即认为已初始化，直接跳过。
type Seeder struct {
	db     *gorm.DB
	logger *logging.Logger
}

func New(db *gorm.DB, logger *logging.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// Migrate 建表（依赖顺序无关，gorm 逐表处理）
func (s *Seeder) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.SysDept{},
		&model.SysMenu{},
		&model.SysRole{},
		&model.SysUser{},
		&model.SysDataScope{},
		&model.SysDataRule{},
		&model.SysUserRole{},
		&model.SysRoleMenu{},
		&model.SysRoleDataScope{},
		&model.SysDataScopeRule{},
		&model.SysLoginLog{},
		&model.SysOperaLog{},
		&model.TaskScheduler{},
		&model.TaskResult{},
	)
}

// Run 写入初始化数据。已初始化返回 nil 不做任何修改。
func (s *Seeder) Run(ctx context.Context) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.SysUser{}).
		Where("username = ?", userFixtures[0].Username).Count(&n).Error; err != nil {
		return fmt.Errorf("seed probe: %w", err)
	}
	if n > 0 {
		s.logger.Logger.Info("seed skipped, data already present",
			zap.String("probe_user", userFixtures[0].Username))
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deptIDs, err := s.seedDepts(tx)
		if err != nil {
			return err
		}
		menuIDs, err := s.seedMenus(tx)
		if err != nil {
			return err
		}
		ruleIDs, err := s.seedRules(tx)
		if err != nil {
			return err
		}
		scopeIDs, err := s.seedScopes(tx, ruleIDs)
		if err != nil {
			return err
		}
		roleIDs, err := s.seedRoles(tx, menuIDs, scopeIDs)
		if err != nil {
			return err
		}
		if err := s.seedUsers(tx, deptIDs, roleIDs); err != nil {
			return err
		}
		return s.seedSchedulers(tx)
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	s.logger.Logger.Info("seed completed",
		zap.Int("depts", countDepts(deptFixtures)),
		zap.Int("menus", countMenus(menuFixtures)),
		zap.Int("roles", len(roleFixtures)),
		zap.Int("users", len(userFixtures)),
		zap.Int("schedulers", len(schedulerFixtures)))
	return nil
}

func (s *Seeder) seedDepts(tx *gorm.DB) (map[string]int64, error) {
	ids := map[string]int64{}
	var walk func(fs []deptFixture, parentID *int64) error
	walk = func(fs []deptFixture, parentID *int64) error {
		for _, f := range fs {
			d := model.SysDept{
				Name:     f.Name,
				Sort:     f.Sort,
				Leader:   strPtr(f.Leader),
				Phone:    strPtr(f.Phone),
				Email:    strPtr(f.Email),
				Status:   1,
				ParentID: parentID,
			}
			if err := tx.Create(&d).Error; err != nil {
				return fmt.Errorf("dept %q: %w", f.Name, err)
			}
			ids[f.Name] = d.ID
			pid := d.ID
			if err := walk(f.Children, &pid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(deptFixtures, nil); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Seeder) seedMenus(tx *gorm.DB) (map[string]int64, error) {
	ids := map[string]int64{}
	var walk func(fs []menuFixture, parentID *int64) error
	walk = func(fs []menuFixture, parentID *int64) error {
		for _, f := range fs {
			if _, dup := ids[f.Name]; dup {
				return fmt.Errorf("menu name %q duplicated", f.Name)
			}
			m := model.SysMenu{
				Title:     f.Title,
				Name:      f.Name,
				Path:      strPtr(f.Path),
				Sort:      f.Sort,
				Icon:      strPtr(f.Icon),
				Type:      f.Type,
				Component: strPtr(f.Component),
				Perms:     strPtr(f.Perms),
				Status:    1,
				Display:   f.Display,
				Cache:     f.Cache,
				Link:      strPtr(f.Link),
				Remark:    strPtr(f.Remark),
				ParentID:  parentID,
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("menu %q: %w", f.Name, err)
			}
			ids[f.Name] = m.ID
			pid := m.ID
			if err := walk(f.Children, &pid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(menuFixtures, nil); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Seeder) seedRules(tx *gorm.DB) (map[string]int64, error) {
	ids := map[string]int64{}
	for _, f := range ruleFixtures {
		r := model.SysDataRule{
			Name:       f.Name,
			Model:      f.Model,
			Column:     f.Column,
			Operator:   f.Operator,
			Expression: f.Expression,
			Value:      f.Value,
		}
		if err := tx.Create(&r).Error; err != nil {
			return nil, fmt.Errorf("data rule %q: %w", f.Name, err)
		}
		ids[f.Name] = r.ID
	}
	return ids, nil
}

func (s *Seeder) seedScopes(tx *gorm.DB, ruleIDs map[string]int64) (map[string]int64, error) {
	ids := map[string]int64{}
	for _, f := range scopeFixtures {
		sc := model.SysDataScope{Name: f.Name, Status: 1}
		if err := tx.Create(&sc).Error; err != nil {
			return nil, fmt.Errorf("data scope %q: %w", f.Name, err)
		}
		ids[f.Name] = sc.ID
		for _, rn := range f.Rules {
			rid, ok := ruleIDs[rn]
			if !ok {
				return nil, fmt.Errorf("data scope %q references unknown rule %q", f.Name, rn)
			}
			bind := model.SysDataScopeRule{DataScopeID: sc.ID, DataRuleID: rid}
			if err := tx.Create(&bind).Error; err != nil {
				return nil, fmt.Errorf("bind scope %q rule %q: %w", f.Name, rn, err)
			}
		}
	}
	return ids, nil
}

func (s *Seeder) seedRoles(tx *gorm.DB, menuIDs, scopeIDs map[string]int64) (map[string]int64, error) {
	ids := map[string]int64{}
	for _, f := range roleFixtures {
		r := model.SysRole{
			Name:           f.Name,
			Status:         1,
			IsFilterScopes: f.IsFilterScopes,
			Remark:         strPtr(f.Remark),
		}
		if err := tx.Create(&r).Error; err != nil {
			return nil, fmt.Errorf("role %q: %w", f.Name, err)
		}
		ids[f.Name] = r.ID
		for _, mn := range f.Menus {
			mid, ok := menuIDs[mn]
			if !ok {
				return nil, fmt.Errorf("role %q references unknown menu %q", f.Name, mn)
			}
			if err := tx.Create(&model.SysRoleMenu{RoleID: r.ID, MenuID: mid}).Error; err != nil {
				return nil, fmt.Errorf("bind role %q menu %q: %w", f.Name, mn, err)
			}
		}
		for _, sn := range f.Scopes {
			sid, ok := scopeIDs[sn]
			if !ok {
				return nil, fmt.Errorf("role %q references unknown scope %q", f.Name, sn)
			}
			if err := tx.Create(&model.SysRoleDataScope{RoleID: r.ID, DataScopeID: sid}).Error; err != nil {
				return nil, fmt.Errorf("bind role %q scope %q: %w", f.Name, sn, err)
			}
		}
	}
	return ids, nil
}

func (s *Seeder) seedUsers(tx *gorm.DB, deptIDs, roleIDs map[string]int64) error {
	now := time.Now()
	for _, f := range userFixtures {
		salt := crypto.NewSalt()
		hashed, err := crypto.HashPassword(f.Password, salt)
		if err != nil {
			return fmt.Errorf("hash password for %q: %w", f.Username, err)
		}
		u := model.SysUser{
			UUID:        uuid.NewString(),
			Username:    f.Username,
			Nickname:    f.Nickname,
			Password:    &hashed,
			Salt:        salt,
			Email:       strPtr(f.Email),
			Status:      1,
			IsSuperuser: f.Superuser,
			IsStaff:     f.Staff,
			JoinTime:    now,
		}
		if f.Dept != "" {
			did, ok := deptIDs[f.Dept]
			if !ok {
				return fmt.Errorf("user %q references unknown dept %q", f.Username, f.Dept)
			}
			u.DeptID = &did
		}
		if err := tx.Create(&u).Error; err != nil {
			return fmt.Errorf("user %q: %w", f.Username, err)
		}
		for _, rn := range f.Roles {
			rid, ok := roleIDs[rn]
			if !ok {
				return fmt.Errorf("user %q references unknown role %q", f.Username, rn)
			}
			if err := tx.Create(&model.SysUserRole{UserID: u.ID, RoleID: rid}).Error; err != nil {
				return fmt.Errorf("bind user %q role %q: %w", f.Username, rn, err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedSchedulers(tx *gorm.DB) error {
	for i := range schedulerFixtures {
		row := schedulerFixtures[i]
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("scheduler %q: %w", row.Name, err)
		}
	}
	return nil
}

func countDepts(fs []deptFixture) int {
	n := 0
	for _, f := range fs {
		n += 1 + countDepts(f.Children)
	}
	return n
}

func countMenus(fs []menuFixture) int {
	n := 0
	for _, f := range fs {
		n += 1 + countMenus(f.Children)
	}
	return n
}

// Package mysql 提供数据访问层的初始化
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层和根管理员
package mysql

import (
	"fmt"

	"vedzeb_server/internal/config"
	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/rbac"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 从配置构建 DSN
//  2. 打开连接，开启 TranslateError 以便把 1062/1452 翻译为 gorm 哨兵错误
//  3. AutoMigrate 全部实体
//  4. 确保根管理员存在
func Init() (*repository.Repositories, error) {
	conf := config.GetConfig()

	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)
	if err := EnsureRootAdmin(repos, &conf.SeedConfig); err != nil {
		return nil, err
	}
	return repos, nil
}

// Migrate 按依赖顺序迁移全部实体，不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.VerificationCode{},
		&model.RefreshToken{},
		&model.Profile{},
		&model.Photo{},
		&model.ContactRequest{},
		&model.Message{},
		&model.SearchAlert{},
		&model.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureRootAdmin 保证系统中存在唯一的 admin 角色账号
// 已存在 admin 时不做任何修改；未配置密码时跳过并告警
func EnsureRootAdmin(repos *repository.Repositories, seed *config.SeedConfig) error {
	total, err := repos.User.Count(model.UserFilter{Role: rbac.RoleAdmin})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	if seed.AdminPassword == "" {
		zap.L().Warn("root admin missing and no seed password configured, skipping")
		return nil
	}

	username := seed.AdminUsername
	user, err := repos.User.FindByPhone(seed.AdminPhone)
	switch {
	case errorx.IsNotFound(err):
		user = &model.User{Phone: seed.AdminPhone}
	case err != nil:
		return err
	}
	user.PhoneVerified = true
	user.Username = &username
	user.Role = rbac.RoleAdmin
	user.RawPassword = seed.AdminPassword

	if err := repos.User.Save(user); err != nil {
		return err
	}
	zap.L().Info("root admin created", zap.String("username", username))
	return nil
}

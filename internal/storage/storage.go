package storage

import (
	"context"
	"fmt"
	"log"

	"resume-ingest-go/internal/config"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 关系型数据库，文档的唯一持久化位置
	MySQL *MySQL

	// 键值存储，提取结果缓存，可选
	Redis *Redis
}

// NewStorage 创建存储管理器
// MySQL是必需依赖，初始化失败直接返回错误；
// Redis是可选的缓存层，初始化失败只记录警告，管线退化为每次调用模型
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	log.Printf("初始化MySQL...")
	storage.MySQL, err = NewMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("初始化MySQL失败: %w", err)
	}

	if cfg.Redis.Address != "" {
		log.Printf("初始化Redis at %s...", cfg.Redis.Address)
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Printf("警告: 初始化Redis失败，提取缓存不可用: %v", err)
			storage.Redis = nil
		}
	} else {
		log.Printf("Redis未配置, 跳过初始化.")
	}

	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Printf("关闭MySQL连接失败: %v", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("关闭Redis连接失败: %v", err)
		}
	}
}

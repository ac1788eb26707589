package config

import "go.uber.org/zap"

func MustNonEmpty(log *zap.Logger, value, envName string) {
	if value == "" {
		log.Fatal("Обязательная переменная окружения не установлена", zap.String("key", envName))
	}
}

func MustNonEmptyBytes(log *zap.Logger, value []byte, envName string) {
	if len(value) == 0 {
		log.Fatal("Обязательная переменная окружения не установлена", zap.String("key", envName))
	}
}

func MustNonEmptyList(log *zap.Logger, value []string, envName string) {
	if len(value) == 0 {
		log.Fatal("Обязательная переменная окружения не установлена", zap.String("key", envName))
	}
}

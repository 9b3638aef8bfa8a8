// Package config загружает настройки процесса и переменные для директив.
//
//   - settings.go — настройки из окружения (caarlos0/env)
//   - vars.go     — переменные из .env файлов (godotenv) и --vars
package config

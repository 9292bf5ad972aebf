// Mock Interview - тренажер собеседований: мастер настройки, голосовое
// интервью по сгенерированным вопросам и оценка ответов моделью.
//
// Usage:
//
//	mockinterview serve
//	mockinterview rehearse --role "Backend Engineer" --tech Go
//	mockinterview telegram
//	mockinterview results list
//
// @title       Mock Interview API
// @version     1.0
// @description Voice mock interviews: question generation, interview storage and AI feedback.
// @BasePath    /
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен: переменные могут быть заданы окружением
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

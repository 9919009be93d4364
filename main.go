package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hitoshi/tellerdesk/internal/app"
)

func main() {
	// ローカル開発用に.envがあれば読み込む。本番では環境変数を直接渡す。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tellerdesk: %v\n", err)
		os.Exit(1)
	}
}

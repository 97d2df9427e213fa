package main

import (
	"os"

	"github.com/romariotrain/audioscribe/internal/app"
)

func main() {
	os.Exit(app.Run("publisher", run))
}

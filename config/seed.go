package config

import (
	"encoding/json"
	"os"

	"jarvis-assistant/internal/models"
)

func LoadSeedPassages(path string) ([]models.UploadPassage, error) {
	//open the file
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	//decode the json data
	var passages []models.UploadPassage
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&passages); err != nil {
		return nil, err
	}

	return passages, nil
}

package main

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// hashFile returns the base64 encoded sha256 of a file, the format lambda
// expects for SourceCodeHash.
func hashFile(filePath string) (string, error) {
	sum, err := fileSum(filePath)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sum), nil
}

func fileSum(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, err
	}
	return hash.Sum(nil), nil
}

func hashDirectory(dirPath string) (string, error) {
	hash := sha256.New()
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			sum, err := fileSum(path)
			if err != nil {
				return err
			}
			hash.Write([]byte(path))
			hash.Write(sum)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// sourceTag combines the directory hashes into a short image tag.
func sourceTag(dirs ...string) (string, error) {
	hash := sha256.New()
	for _, dir := range dirs {
		sum, err := hashDirectory(dir)
		if err != nil {
			return "", err
		}
		hash.Write([]byte(sum))
	}
	return hex.EncodeToString(hash.Sum(nil))[:12], nil
}

package util

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/nakachan-ing/jmt-cli/internal/model"
)

func OpenEditor(filePath string, config model.Config) error {
	editor := config.Editor
	if env := os.Getenv("EDITOR"); editor == "" && env != "" {
		editor = env
	}
	c := exec.Command(editor, filePath)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor (%s): %w", filePath, err)
	}
	return nil
}

// EditText lets the user change text in the configured editor and returns
// the result without the trailing newline editors add.
func EditText(text string, config model.Config) (string, error) {
	f, err := os.CreateTemp("", "jmt-task-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := OpenEditor(f.Name(), config); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read temp file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to open browser (%s): %w", url, err)
	}
	go c.Wait()
	return nil
}

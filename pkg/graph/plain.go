package graph

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// PlainVertex is one line of the plain vertex list
type PlainVertex struct {
	ID     string
	Prefix string
}

// ReadPlainVertices reads a plain "<id> <prefix>" vertex list
func ReadPlainVertices(path string) ([]PlainVertex, error) {
	var vertices []PlainVertex
	err := scanPairs(path, func(a, b string) {
		vertices = append(vertices, PlainVertex{ID: a, Prefix: b})
	})
	return vertices, err
}

// ReadPlainEdges reads a plain "<src> <dst>" edge list
func ReadPlainEdges(path string) ([][2]string, error) {
	var edges [][2]string
	err := scanPairs(path, func(a, b string) {
		edges = append(edges, [2]string{a, b})
	})
	return edges, err
}

func scanPairs(path string, fn func(a, b string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return errors.Errorf("%s line %d: expected 2 fields, got %d", path, line, len(fields))
		}
		fn(fields[0], fields[1])
	}
	return errors.Wrapf(scanner.Err(), "read %s", path)
}

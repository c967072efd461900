//go:build ignore

// generate writes the sample users table in every format the loader
// reads. Run it with go generate ./cmd/minisql or directly:
//
//	go run testdata/generate.go -out data
package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/parquet-go"
)

type User struct {
	ID      int64  `parquet:"id"`
	Name    string `parquet:"name"`
	Age     int32  `parquet:"age"`
	Country string `parquet:"country"`
	Email   string `parquet:"email"`
}

var users = []User{
	{ID: 1, Name: "Alice", Age: 30, Country: "USA", Email: "alice@example.com"},
	{ID: 2, Name: "Bob", Age: 25, Country: "UK", Email: ""},
	{ID: 3, Name: "Charlie", Age: 35, Country: "USA", Email: "charlie@example.com"},
	{ID: 4, Name: "Diana", Age: 28, Country: "Germany", Email: "NULL"},
	{ID: 5, Name: "Eve", Age: 42, Country: "UK", Email: "eve@example.com"},
}

func main() {
	out := flag.String("out", "data", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}

	writeFile(filepath.Join(*out, "users.csv"), func(w io.Writer) error { return writeCSV(w) })
	writeFile(filepath.Join(*out, "users_gz.csv.gz"), func(w io.Writer) error {
		zw := gzip.NewWriter(w)
		if err := writeCSV(zw); err != nil {
			return err
		}
		return zw.Close()
	})
	writeFile(filepath.Join(*out, "users_zst.csv.zst"), func(w io.Writer) error {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := writeCSV(zw); err != nil {
			return err
		}
		return zw.Close()
	})
	writeFile(filepath.Join(*out, "users_pq.parquet"), func(w io.Writer) error {
		pw := parquet.NewGenericWriter[User](w)
		if _, err := pw.Write(users); err != nil {
			return err
		}
		return pw.Close()
	})

	log.Printf("Generated sample tables with %d users in %s", len(users), *out)
}

func writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "age", "country", "email"}); err != nil {
		return err
	}
	for _, u := range users {
		record := []string{
			strconv.FormatInt(u.ID, 10),
			u.Name,
			strconv.Itoa(int(u.Age)),
			u.Country,
			u.Email,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, write func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := write(f); err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
}

// qbankctl maintains the question bank: it imports question CSVs into the
// question_rows table and copies referenced image assets, so deployments can
// ship a single sqlite file instead of loose CSVs.
//
//	qbankctl import  -driver sqlite -dsn file:qbank.db Master_questions.csv
//	qbankctl assets  -base ./assets ./images
//	qbankctl sections -driver sqlite -dsn file:qbank.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kinelab/biomech-tutor/internal/dataset"
	"github.com/kinelab/biomech-tutor/internal/db"
	"github.com/kinelab/biomech-tutor/internal/storage"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "import":
		cmdImport(ctx, os.Args[2:])
	case "sections":
		cmdSections(ctx, os.Args[2:])
	case "assets":
		cmdAssets(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: qbankctl <import|sections|assets> [flags] [args]")
	os.Exit(2)
}

func cmdImport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	driver := fs.String("driver", "sqlite", "question bank driver (sqlite|postgres)")
	dsn := fs.String("dsn", "", "question bank DSN")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("import: exactly one CSV path expected")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := dataset.ParseCSV(f)
	if err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	dbh, err := db.Open(ctx, db.Driver(*driver), *dsn)
	if err != nil {
		log.Fatalf("open question bank: %v", err)
	}
	defer dbh.Close()

	if err := dataset.SaveRows(ctx, dbh, rows); err != nil {
		log.Fatalf("import: %v", err)
	}

	ds, problems := dataset.New(rows)
	for _, p := range problems {
		log.Printf("data integrity: %s", p)
	}
	log.Printf("imported %d rows (%d sections)", len(rows), len(ds.Sections()))
}

func cmdSections(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	driver := fs.String("driver", "sqlite", "question bank driver (sqlite|postgres)")
	dsn := fs.String("dsn", "", "question bank DSN")
	fs.Parse(args)

	dbh, err := db.Open(ctx, db.Driver(*driver), *dsn)
	if err != nil {
		log.Fatalf("open question bank: %v", err)
	}
	defer dbh.Close()

	ds, _, err := dataset.LoadSQL(ctx, dbh)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	for _, sec := range ds.Sections() {
		qs, _ := ds.Questions(sec)
		fmt.Printf("%s\t%d questions\n", sec, len(qs))
	}
}

func cmdAssets(args []string) {
	fs := flag.NewFlagSet("assets", flag.ExitOnError)
	base := fs.String("base", "./assets", "asset store base path")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("assets: exactly one source directory expected")
	}
	src := fs.Arg(0)

	bs, err := storage.NewFSStore(*base)
	if err != nil {
		log.Fatalf("asset store: %v", err)
	}
	n := 0
	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := bs.Put(rel, f); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		log.Fatalf("assets: %v", err)
	}
	log.Printf("copied %d assets into %s", n, *base)
}

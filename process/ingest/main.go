// Command ingest registers receipt PDFs from a directory as uploaded files,
// optionally watching for new drops and running the extraction pipeline on
// each registration.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"receiptsvc/models"
	"receiptsvc/pkg/extract"
	"receiptsvc/pkg/pipeline"
	"receiptsvc/pkg/rasterize"
)

var verbose bool

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func main() {
	dirFlag := flag.String("dir", "uploads", "directory to scan for receipt PDFs")
	watch := flag.Bool("watch", false, "watch directory for new files")
	runPipeline := flag.Bool("process", false, "run the extraction pipeline on each registered file")
	tmpFlag := flag.String("temp", "temp", "output area for rendered page images")
	langFlag := flag.String("lang", "eng", "tesseract language code")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	db := mustInitDBFromEnv()
	var pipe *pipeline.Pipeline
	if *runPipeline {
		pipe = pipeline.New(
			&pipeline.GormRepository{DB: db},
			rasterize.FitzRenderer{},
			extract.TesseractEngine{},
			*tmpFlag,
			*langFlag,
		)
	}

	registered := scanDir(db, pipe, *dirFlag)
	log.Printf("scan complete: %d new files registered in %s", registered, *dirFlag)

	if !*watch {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("fsnotify watcher: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(*dirFlag); err != nil {
		log.Fatalf("watch %s: %v", *dirFlag, err)
	}
	log.Printf("watching %s for new PDFs", *dirFlag)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isPDF(ev.Name) {
				continue
			}
			registerFile(db, pipe, ev.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func scanDir(db *gorm.DB, pipe *pipeline.Pipeline, dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read dir %s: %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !isPDF(e.Name()) {
			continue
		}
		if registerFile(db, pipe, filepath.Join(dir, e.Name())) {
			n++
		}
	}
	return n
}

// registerFile inserts an uploaded_files row for path unless one already
// exists, then optionally runs the pipeline on it.
func registerFile(db *gorm.DB, pipe *pipeline.Pipeline, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	var existing models.UploadedFile
	if err := db.Where("file_path = ?", abs).First(&existing).Error; err == nil {
		if verbose {
			log.Printf("skip %s: already registered as %d", abs, existing.ID)
		}
		return false
	}
	up := models.UploadedFile{FileName: filepath.Base(path), FilePath: abs, IsValid: true}
	if err := db.Create(&up).Error; err != nil {
		log.Printf("register %s failed: %v", abs, err)
		return false
	}
	if verbose {
		log.Printf("registered %s as upload %d", abs, up.ID)
	}
	if pipe != nil {
		out, err := pipe.Process(up.ID)
		if err != nil {
			log.Printf("process upload %d failed: %v", up.ID, err)
		} else if out.Persisted {
			log.Printf("upload %d: %s %s %.2f (%s)", up.ID,
				out.Result.MerchantName, out.Result.Date, out.Result.TotalAmount, out.Result.Confidence)
		} else {
			log.Printf("upload %d: extraction insufficient, nothing persisted", up.ID)
		}
	}
	return true
}

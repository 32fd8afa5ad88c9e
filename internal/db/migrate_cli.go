package db

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
)

// RunMigrateCommand handles the "migrate" subcommand. args holds everything
// after "migrate" on the command line.
func RunMigrateCommand(dbPath string, args []string) {
	if len(args) == 0 {
		printMigrateUsage()
		os.Exit(1)
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		log.Fatalf("Failed to get migrations filesystem: %v", err)
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	switch args[0] {
	case "up":
		handleMigrateUp(database, migrationsFS)
	case "down":
		handleMigrateDown(database, migrationsFS)
	case "status":
		handleMigrateStatus(database, migrationsFS)
	case "force":
		if len(args) < 2 {
			log.Fatal("migrate force requires a version argument")
		}
		handleMigrateForce(database, migrationsFS, args[1])
	case "help", "-h", "--help":
		printMigrateUsage()
	default:
		fmt.Printf("Unknown migrate command: %s\n\n", args[0])
		printMigrateUsage()
		os.Exit(1)
	}
}

// handleMigrateUp applies all pending migrations
func handleMigrateUp(database *DB, migrationsFS fs.FS) {
	log.Printf("Running migrations...")
	if err := database.MigrateUp(migrationsFS); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("All migrations applied successfully")

	version, dirty, _ := database.MigrateVersion(migrationsFS)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

// handleMigrateDown rolls back the most recent migration
func handleMigrateDown(database *DB, migrationsFS fs.FS) {
	log.Printf("Rolling back most recent migration...")
	if err := database.MigrateDown(migrationsFS); err != nil {
		log.Fatalf("Rollback failed: %v", err)
	}
	log.Println("Rollback complete")

	version, dirty, _ := database.MigrateVersion(migrationsFS)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

// handleMigrateStatus prints the current migration state
func handleMigrateStatus(database *DB, migrationsFS fs.FS) {
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		log.Fatalf("Failed to get migration status: %v", err)
	}
	fmt.Printf("Current version: %d\n", version)
	fmt.Printf("Dirty: %v\n", dirty)
}

// handleMigrateForce forces the schema version without running migrations.
// Recovery tool for dirty states only.
func handleMigrateForce(database *DB, migrationsFS fs.FS, versionStr string) {
	forceVersion, err := strconv.Atoi(versionStr)
	if err != nil {
		log.Fatalf("Invalid version %q: %v", versionStr, err)
	}

	if err := database.MigrateForce(migrationsFS, forceVersion); err != nil {
		log.Fatalf("Force failed: %v", err)
	}
	log.Printf("Forced version to %d", forceVersion)
}

func printMigrateUsage() {
	fmt.Println(`Usage: autolens migrate <command>

Commands:
  up             Apply all pending migrations
  down           Roll back the most recent migration
  status         Show current migration version and dirty state
  force <ver>    Force the version marker (dirty-state recovery)
  help           Show this help`)
}

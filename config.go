package mydb

// Config configures Open.
//
// All fields are optional:
//   - Database: selected after connecting; empty keeps the database named in the URL
//   - LogFile: file receiving operational error messages; empty disables the file sink
//   - JournalPath: SQLite file recording every executed statement; empty disables the journal
type Config struct {
	Database    string
	LogFile     string
	JournalPath string
}

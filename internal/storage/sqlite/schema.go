package sqlite

// schemaStatements is the full schema, applied idempotently by Migrate.
// Timestamps are RFC 3339 text; nested collections are JSON text columns.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL COLLATE NOCASE UNIQUE,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL,
		profession TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		organization TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		privacy TEXT NOT NULL DEFAULT '{}',
		online INTEGER NOT NULL DEFAULT 0,
		last_seen_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		cpd_points INTEGER NOT NULL DEFAULT 0,
		capacity INTEGER NOT NULL DEFAULT 0,
		current_attendees INTEGER NOT NULL DEFAULT 0,
		learning_outcomes TEXT NOT NULL DEFAULT '[]',
		speakers TEXT NOT NULL DEFAULT '[]',
		agenda TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ticket_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id INTEGER NOT NULL REFERENCES events(id),
		name TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		sales_start TEXT,
		sales_end TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS event_registrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		event_id INTEGER NOT NULL REFERENCES events(id),
		ticket_type_id INTEGER NOT NULL REFERENCES ticket_types(id),
		quantity INTEGER NOT NULL,
		total_price REAL NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL,
		instructor TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		cpd_points INTEGER NOT NULL DEFAULT 0,
		module_count INTEGER NOT NULL DEFAULT 0,
		lesson_count INTEGER NOT NULL DEFAULT 0,
		curriculum TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_enrollments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		course_id INTEGER NOT NULL REFERENCES courses(id),
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		completed_lessons TEXT NOT NULL DEFAULT '[]',
		last_accessed_at TEXT,
		enrolled_at TEXT NOT NULL,
		UNIQUE (user_id, course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cpd_activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		points INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS forum_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		discussion_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS discussions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL REFERENCES users(id),
		category_id INTEGER NOT NULL REFERENCES forum_categories(id),
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		comments INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mentorships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		specialties TEXT NOT NULL DEFAULT '[]',
		mentee_capacity INTEGER NOT NULL,
		current_mentees INTEGER NOT NULL DEFAULT 0,
		available INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		issuer TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		issued_on TEXT NOT NULL,
		expires_on TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_user ON event_registrations(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_user ON course_enrollments(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cpd_user ON cpd_activities(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_credentials_user ON credentials(user_id)`,
}

package store

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		firstname TEXT,
		telephone_number TEXT,
		email TEXT,
		password TEXT,
		role TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS children (
		id INTEGER PRIMARY KEY,
		name TEXT,
		age INTEGER,
		user_id INTEGER,
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE INDEX IF NOT EXISTS idx_users_telephone_number ON users (telephone_number)`,
	`CREATE INDEX IF NOT EXISTS idx_children_user_id ON children (user_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		firstname TEXT,
		telephone_number TEXT,
		email TEXT,
		password TEXT,
		role TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS children (
		id BIGSERIAL PRIMARY KEY,
		name TEXT,
		age INTEGER,
		user_id BIGINT REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE INDEX IF NOT EXISTS idx_users_telephone_number ON users (telephone_number)`,
	`CREATE INDEX IF NOT EXISTS idx_children_user_id ON children (user_id)`,
}

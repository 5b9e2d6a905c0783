package catalog

const schema = `
CREATE TABLE IF NOT EXISTS packages (
	id          INTEGER PRIMARY KEY,
	type        TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	version     TEXT NOT NULL DEFAULT '',
	version_key TEXT NOT NULL DEFAULT '',
	runtime     TEXT NOT NULL DEFAULT '',
	channel     TEXT NOT NULL,
	attr        TEXT NOT NULL,
	fullname    TEXT NOT NULL DEFAULT '',
	priority    INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	meta        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS packages_name ON packages (name, version);
CREATE VIRTUAL TABLE IF NOT EXISTS packages_text USING fts5 (name, description);
`

const insertPackage = `
INSERT INTO packages (type, name, version, version_key, runtime, channel, attr, fullname, priority, description, meta)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectMatch = `
SELECT type, name, version, runtime, channel, attr, fullname, priority, description, meta
FROM packages
WHERE name = ?`

const orderMatch = `
ORDER BY version_key DESC, priority DESC`

const selectSearch = `
SELECT p.name, p.type, max(p.version), max(p.channel), max(p.description)
FROM packages_text
JOIN packages p ON p.id = packages_text.rowid
WHERE packages_text MATCH ?`

const groupSearch = `
GROUP BY p.name, p.type
ORDER BY p.name, p.type
LIMIT ?`

const selectDump = `
SELECT name, type, max(version), max(channel), max(description)
FROM packages
GROUP BY name, type
ORDER BY name, type`

const rebuildIndex = `
DELETE FROM packages_text;
INSERT INTO packages_text (rowid, name, description) SELECT id, name, description FROM packages;`

package mysql

// Schema creation is idempotent and sequenced explicitly before any data
// load; migrations/001_init.sql carries the same DDL for the test harness.
const createBanksSQL = `
CREATE TABLE IF NOT EXISTS banks (
  bank_id   BIGINT AUTO_INCREMENT PRIMARY KEY,
  bank_name VARCHAR(100) NOT NULL UNIQUE
)`

const createReviewsSQL = `
CREATE TABLE IF NOT EXISTS reviews (
  review_id       BIGINT AUTO_INCREMENT PRIMARY KEY,
  bank_id         BIGINT NOT NULL,
  review_text     TEXT NOT NULL,
  rating          INT,
  review_date     DATE,
  sentiment_label VARCHAR(50),
  sentiment_score DOUBLE,
  theme           VARCHAR(255),
  source          VARCHAR(50),
  CONSTRAINT fk_reviews_bank FOREIGN KEY (bank_id) REFERENCES banks(bank_id)
)`

// Conflict-tolerant insert: an existing name is a no-op, never an error.
// The no-op path does not yield the generated id, hence the separate
// select-by-name below.
const insertBankSQL = `
INSERT INTO banks (bank_name) VALUES (?)
ON DUPLICATE KEY UPDATE bank_name = bank_name`

const selectBankIDSQL = `SELECT bank_id FROM banks WHERE bank_name = ?`

// Plain INSERT on purpose: reviews carry no natural key, so re-running a
// batch duplicates rows while banks stay deduplicated.
const insertReviewsPrefix = `INSERT INTO reviews
  (bank_id, review_text, rating, review_date, sentiment_label, sentiment_score, theme, source)
VALUES `

const listBanksSQL = `
SELECT b.bank_id, b.bank_name, COUNT(r.review_id), AVG(r.rating)
FROM banks b
LEFT JOIN reviews r ON r.bank_id = b.bank_id
GROUP BY b.bank_id, b.bank_name
ORDER BY b.bank_id`

const listReviewsSQL = `
SELECT review_id, bank_id, review_text, rating, review_date,
       sentiment_label, sentiment_score, theme, source
FROM reviews
WHERE bank_id = ?
ORDER BY review_date DESC, review_id DESC
LIMIT ?`

const reviewTextsSQL = `SELECT review_text FROM reviews WHERE bank_id = ? ORDER BY review_id`

const sentimentBreakdownSQL = `
SELECT b.bank_name, r.sentiment_label, COUNT(*)
FROM reviews r
JOIN banks b ON b.bank_id = r.bank_id
GROUP BY b.bank_name, r.sentiment_label
ORDER BY b.bank_name, r.sentiment_label`

const themeBreakdownSQL = `
SELECT theme, COUNT(*) FROM reviews
GROUP BY theme
ORDER BY COUNT(*) DESC, theme`

const themeBreakdownByLabelSQL = `
SELECT theme, COUNT(*) FROM reviews
WHERE sentiment_label = ?
GROUP BY theme
ORDER BY COUNT(*) DESC, theme`

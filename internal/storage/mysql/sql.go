package mysql

const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (source_id, product, product_title, review_title, author_name, author_age, author_city,\n" +
	"   review_date, parsed_date, rating, recommendation, pros, cons, notes,\n" +
	"   feedback_pos, feedback_neg, feedback_score)\nVALUES "

const reviewPlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

// The source id covers the identifying content; only the volatile parts move.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  recommendation = VALUES(recommendation),\n" +
	"  pros           = VALUES(pros),\n" +
	"  cons           = VALUES(cons),\n" +
	"  feedback_pos   = VALUES(feedback_pos),\n" +
	"  feedback_neg   = VALUES(feedback_neg),\n" +
	"  feedback_score = VALUES(feedback_score),\n" +
	"  scraped_at     = CURRENT_TIMESTAMP\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Rows come back in scrape order: the insert order of one run.
const listReviewsSQL = `
SELECT
  source_id,
  product,
  product_title,
  review_title,
  author_name,
  author_age,
  author_city,
  review_date,
  rating,
  recommendation,
  pros,
  cons,
  notes,
  feedback_pos,
  feedback_neg,
  feedback_score
FROM reviews
WHERE product = ?
ORDER BY id
LIMIT ?
`

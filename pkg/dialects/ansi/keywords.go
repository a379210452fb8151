package ansi

// Reserved words can never be naked identifiers.
const reservedKeywords = `ALL
ALTER
AND
ANY
AS
ASC
BETWEEN
BY
CASE
CAST
CHECK
COLLATE
COLUMN
CONSTRAINT
CREATE
CROSS
CURRENT
DEFAULT
DELETE
DESC
DISTINCT
DROP
ELSE
END
EXCEPT
EXISTS
FALSE
FETCH
FOR
FOREIGN
FROM
FULL
GRANT
GROUP
HAVING
IN
INNER
INSERT
INTERSECT
INTERVAL
INTO
IS
JOIN
LEFT
LIKE
LIMIT
NATURAL
NOT
NULL
ON
OR
ORDER
OUTER
OVER
PRIMARY
REFERENCES
RIGHT
SELECT
SET
TABLE
THEN
TO
TRUE
UNION
UNIQUE
UPDATE
USING
VALUES
WHEN
WHERE
WINDOW
WITH`

const unreservedKeywords = `ACTION
AT
BEGIN
BERNOULLI
BINARY
BOTH
CASCADE
CHARACTER
COMMIT
DATE
DOUBLE
ESCAPE
FILTER
FIRST
FOLLOWING
IF
IGNORE
ILIKE
KEY
LARGE
LAST
LEADING
MATCH
NEXT
NO
NULLS
OBJECT
OFFSET
ONLY
OVERWRITE
PARTIAL
PARTITION
PRECEDING
PRECISION
QUALIFY
RANGE
RECURSIVE
REPEATABLE
REPLACE
RESPECT
RESTRICT
RLIKE
ROLLBACK
ROW
ROWS
SCHEMA
SEPARATOR
SIMPLE
START
SYSTEM
TABLESAMPLE
TEMP
TEMPORARY
TIME
TIMESTAMP
TRAILING
TRANSACTION
TRANSIENT
TRUNCATE
UNBOUNDED
UNSIGNED
VALUE
VARYING
VIEW
WITHOUT
WORK
ZONE`

package trino

// Trino reserves fewer words than ANSI. Every other ANSI keyword stays a
// keyword but becomes usable as an identifier.
const reservedKeywords = `ALTER
AND
AS
BETWEEN
BY
CASE
CAST
CONSTRAINT
CREATE
CROSS
CUBE
DEALLOCATE
DELETE
DESCRIBE
DISTINCT
DROP
ELSE
END
ESCAPE
EXCEPT
EXECUTE
EXISTS
EXTRACT
FALSE
FOR
FROM
FULL
GROUP
GROUPING
HAVING
IN
INNER
INSERT
INTERSECT
INTO
IS
JOIN
LEFT
LIKE
LISTAGG
NATURAL
NORMALIZE
NOT
NULL
ON
OR
ORDER
OUTER
PREPARE
RECURSIVE
RIGHT
ROLLUP
SELECT
SKIP
TABLE
THEN
TRIM
TRUE
UESCAPE
UNION
UNNEST
USING
VALUES
WHEN
WHERE
WITH`

const unreservedKeywords = `ANALYZE
ARRAY
BIGINT
BOOLEAN
CHAR
COMMENT
COUNT
DAY
DECIMAL
ERROR
HOUR
INT
INTEGER
IPADDRESS
JSON
MAP
MINUTE
MONTH
NUMERIC
OVERFLOW
REAL
SECOND
SMALLINT
TINYINT
TO
UUID
VARBINARY
VARCHAR
WITHIN
YEAR`

package searchlog

const createSearchTable = `
CREATE TABLE IF NOT EXISTS searches (
  id integer primary key autoincrement,
  time datetime not null,
  fen string not null,
  move string not null,
  playouts int,
  elapsed_ms int,
  eval int,
  visits int,
  value real,
  nodes int,
  aborted boolean,
  config string
)`

const createMoveView = `
CREATE VIEW IF NOT EXISTS move_stats (
  fen, move, searches, playouts, mean_value
) AS
SELECT fen, move, count(*), sum(playouts), avg(value)
  FROM searches
 GROUP BY fen, move
`

const insertStmt = `
INSERT INTO searches (time, fen, move, playouts, elapsed_ms, eval, visits, value, nodes, aborted, config)
VALUES (:time, :fen, :move, :playouts, :elapsed_ms, :eval, :visits, :value, :nodes, :aborted, :config)
`

const selectRecent = `
SELECT id, time, fen, move, playouts, elapsed_ms, eval, visits, value, nodes, aborted, config
  FROM searches
 ORDER BY id DESC
 LIMIT ?
`

const selectMoveStats = `
SELECT fen, move, searches, playouts, mean_value
  FROM move_stats
 WHERE fen = ?
 ORDER BY searches DESC, move
`

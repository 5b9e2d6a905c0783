package catalog

// MatchExpressionExported exposes matchExpression for testing.
var MatchExpressionExported = matchExpression

package paging

// Edge es un nodo con su cursor.
type Edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// PageInfo sigue la convención de conexiones de GraphQL.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Connection es el sobre {edges, pageInfo} que devuelven todos los listados.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Build arma la conexión con la heurística de conteo: hasNextPage = len(rows) == limit.
// Con una página justo en el borde reporta hasNextPage=true aunque no haya más filas:
// 4 filas con pageSize 2 dan una página 2 con hasNextPage=true y una tercera vacía.
// Por eso el modo por defecto es BuildLookahead (PAGE_LOOKAHEAD=true), que en ese caso
// da hasNextPage=false en la página 2. Build queda para PAGE_LOOKAHEAD=false, cuando el
// store no debe traer la fila extra.
func Build[T any](rows []T, limit int, cursorOf func(T) string) Connection[T] {
	return assemble(rows, len(rows) == limit && limit > 0, cursorOf)
}

// BuildLookahead espera hasta limit+1 filas (la consulta pidió una de más):
// si llegó la extra hay página siguiente y se descarta.
func BuildLookahead[T any](rows []T, limit int, cursorOf func(T) string) Connection[T] {
	hasNext := len(rows) > limit
	if hasNext {
		rows = rows[:limit]
	}
	return assemble(rows, hasNext, cursorOf)
}

// BuildFor elige el modo según la ventana con la que se consultó el store.
func BuildFor[T any](rows []T, w Window, cursorOf func(T) string) Connection[T] {
	if w.Lookahead {
		return BuildLookahead(rows, w.Limit, cursorOf)
	}
	return Build(rows, w.Limit, cursorOf)
}

func assemble[T any](rows []T, hasNext bool, cursorOf func(T) string) Connection[T] {
	edges := make([]Edge[T], 0, len(rows))
	for _, r := range rows {
		edges = append(edges, Edge[T]{Cursor: cursorOf(r), Node: r})
	}
	info := PageInfo{HasNextPage: hasNext && len(edges) > 0}
	if len(edges) > 0 {
		info.EndCursor = edges[len(edges)-1].Cursor
	}
	return Connection[T]{Edges: edges, PageInfo: info}
}

// Map transforma los nodos conservando cursores y pageInfo.
func Map[T, U any](c Connection[T], fn func(T) U) Connection[U] {
	edges := make([]Edge[U], 0, len(c.Edges))
	for _, e := range c.Edges {
		edges = append(edges, Edge[U]{Cursor: e.Cursor, Node: fn(e.Node)})
	}
	return Connection[U]{Edges: edges, PageInfo: c.PageInfo}
}

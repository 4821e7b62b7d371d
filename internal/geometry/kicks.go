package geometry

// Kicks returns the six-entry, priority-ordered wall-kick sequence tried
// when rotating piece from rotation `from` to rotation `to`. The O piece
// has no kicks (rotating it is always a no-op translation). The I piece
// uses its own table, distinct from the shared "3x3 family" table used by
// T, L, J, S and Z. Calling Kicks with from == to is a programming error
// (there is no rotation to perform) and panics.
//
// Ported from yaahc/tetrizz's src/movegen.rs `kicks` function, which in
// turn follows the conventional super-rotation-system offsets.
func Kicks(piece Piece, from, to Rotation) [6]Offset {
	if from == to {
		panic("geometry: Kicks called with from == to")
	}
	if piece == O {
		return [6]Offset{}
	}
	table := threeByThreeKicks
	if piece == I {
		table = iKicks
	}
	k, ok := table[kickKey{from, to}]
	if !ok {
		panic("geometry: no kick sequence registered for rotation pair")
	}
	return k
}

type kickKey struct {
	from, to Rotation
}

func off(dx, dy int8) Offset { return Offset{DX: dx, DY: dy} }

var iKicks = map[kickKey][6]Offset{
	{Right, Up}:    {off(-1, 0), off(-2, 0), off(1, 0), off(-2, -2), off(1, 1), off(-1, 0)},
	{Right, Down}:  {off(0, -1), off(-1, -1), off(2, -1), off(-1, 1), off(2, -2), off(0, -1)},
	{Right, Left}:  {off(-1, -1), off(0, -1), off(-1, -1), off(-1, -1), off(-1, -1), off(-1, -1)},
	{Down, Up}:     {off(-1, 1), off(-1, 0), off(-1, 1), off(-1, 1), off(-1, 1), off(-1, 1)},
	{Down, Right}:  {off(0, 1), off(-2, 1), off(1, 1), off(-2, 2), off(1, -1), off(0, 1)},
	{Down, Left}:   {off(-1, 0), off(1, 0), off(-2, 0), off(1, 1), off(-2, -2), off(-1, 0)},
	{Left, Up}:     {off(0, 1), off(1, 1), off(-2, 1), off(1, -1), off(-2, 2), off(0, 1)},
	{Left, Right}:  {off(1, 1), off(0, 1), off(1, 1), off(1, 1), off(1, 1), off(1, 1)},
	{Left, Down}:   {off(1, 0), off(2, 0), off(-1, 0), off(2, 2), off(-1, -1), off(1, 0)},
	{Up, Right}:    {off(1, 0), off(2, 0), off(-1, 0), off(-1, -1), off(2, 2), off(1, 0)},
	{Up, Left}:     {off(0, -1), off(-1, -1), off(2, -1), off(2, -2), off(-1, 1), off(0, -1)},
	{Up, Down}:     {off(1, -1), off(1, 0), off(1, -1), off(1, -1), off(1, -1), off(1, -1)},
}

var threeByThreeKicks = map[kickKey][6]Offset{
	{Right, Up}:    {off(0, 0), off(1, 0), off(1, -1), off(0, 2), off(1, 2), off(0, 0)},
	{Right, Down}:  {off(0, 0), off(1, 0), off(1, -1), off(0, 2), off(1, 2), off(0, 0)},
	{Right, Left}:  {off(0, 0), off(1, 0), off(1, 2), off(1, 1), off(0, 2), off(0, 1)},
	{Down, Up}:     {off(0, 0), off(0, -1), off(-1, -1), off(1, -1), off(-1, 0), off(1, 0)},
	{Down, Right}:  {off(0, 0), off(-1, 0), off(-1, 1), off(0, -2), off(-1, -2), off(0, 0)},
	{Down, Left}:   {off(0, 0), off(1, 0), off(1, 1), off(0, -2), off(1, -2), off(0, 0)},
	{Left, Up}:     {off(0, 0), off(-1, 0), off(-1, -1), off(0, 2), off(-1, 2), off(0, 0)},
	{Left, Right}:  {off(0, 0), off(-1, 0), off(-1, 2), off(-1, 1), off(0, 2), off(0, 1)},
	{Left, Down}:   {off(0, 0), off(-1, 0), off(-1, -1), off(0, 2), off(-1, 2), off(0, 0)},
	{Up, Right}:    {off(0, 0), off(-1, 0), off(-1, 1), off(0, -2), off(-1, -2), off(0, 0)},
	{Up, Left}:     {off(0, 0), off(1, 0), off(1, 1), off(0, -2), off(1, -2), off(0, 0)},
	{Up, Down}:     {off(0, 0), off(0, 1), off(1, 1), off(-1, 1), off(1, 0), off(-1, 0)},
}

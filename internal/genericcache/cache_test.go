package genericcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

type fakeFile struct {
	id uint32
}

func (f *fakeFile) FileID() uint32 { return f.id }
func (f *fakeFile) Path() string   { return "fake.ax" }

func newOpenList(t *testing.T, file types.FileHandle) *types.TypeInfo {
	t.Helper()
	tparam := &types.TypeInfo{TypeName: "T", Class: types.ClassGenericArgument}
	elem := types.ResolvedType{TypeInfo: tparam}

	list := &types.TypeInfo{
		DeclaringFile:      file,
		TypeName:           "List",
		FullyQualifiedName: "App::List`1",
		Class:              types.ClassClass,
		GenericArguments:   []types.ResolvedType{elem},
		Flags:              types.FlagIsGeneric | types.FlagIsGenericTypeDefinition,
	}
	list.Fields = []*types.FieldInfo{
		{DeclaringType: list, Name: "item", Type: elem},
	}
	list.Methods = []*types.MethodInfo{
		{DeclaringType: list, Name: "Get", ReturnType: elem},
	}
	return list
}

type fakeBitmap struct{ bits map[uint32]bool }

func (b fakeBitmap) IsSet(bit uint32) bool { return b.bits[bit] }

func TestMakeGenericType_ConcurrentCallsReturnSamePointer(t *testing.T) {
	c := New()
	file := &fakeFile{id: 1}
	open := newOpenList(t, file)
	intArg := types.FromBuiltIn(types.BuiltInInt32)

	const goroutines = 32
	results := make([]*types.TypeInfo, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i] = c.MakeGenericType(open, []types.ResolvedType{intArg})
		}()
	}
	wg.Wait()

	first := results[0]
	require.NotNil(t, first)
	for _, r := range results {
		assert.Same(t, first, r)
	}
	assert.Equal(t, "App::List`1<int>", first.FullyQualifiedName)
	assert.Equal(t, intArg, first.Fields[0].Type)
	assert.Equal(t, intArg, first.Methods[0].ReturnType)
}

func TestMakeGenericType_DistinctArgsProduceDistinctTypes(t *testing.T) {
	c := New()
	open := newOpenList(t, &fakeFile{id: 1})

	intList := c.MakeGenericType(open, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt32)})
	strList := c.MakeGenericType(open, []types.ResolvedType{types.FromBuiltIn(types.BuiltInString)})

	assert.NotSame(t, intList, strList)
	assert.NotEqual(t, intList.FullyQualifiedName, strList.FullyQualifiedName)
}

func TestInvalidate_RemovesEntriesForChangedFiles(t *testing.T) {
	c := New()
	file := &fakeFile{id: 7}
	open := newOpenList(t, file)
	arg := types.FromBuiltIn(types.BuiltInInt32)

	first := c.MakeGenericType(open, []types.ResolvedType{arg})
	require.NotNil(t, first)

	c.Invalidate(fakeBitmap{bits: map[uint32]bool{7: true}})

	second := c.MakeGenericType(open, []types.ResolvedType{arg})
	assert.NotSame(t, first, second, "invalidated entry must be rebuilt, not reused")
}

func TestMakeGenericMethod_IsStubbed(t *testing.T) {
	c := New()
	_, err := c.MakeGenericMethod(&types.MethodInfo{}, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

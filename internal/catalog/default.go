package catalog

import "github.com/stemsi/exstem-online/internal/model"

func q(id, text string, correct, marks int, options ...string) model.Question {
	return model.Question{ID: id, Text: text, Options: options, CorrectAnswer: correct, Marks: marks}
}

// Default returns the built-in catalog: one subject per academic year with a
// fixed exam window each, a four-student roster and the admin login.
func Default() *Catalog {
	return &Catalog{
		Subjects: defaultSubjects(),
		Schedules: []model.Schedule{
			{ID: "schedule-1", SubjectID: "c-prog-1", Date: "2025-09-01", StartTime: "09:00", EndTime: "10:00", IsActive: true},
			{ID: "schedule-2", SubjectID: "math-1", Date: "2025-09-01", StartTime: "11:00", EndTime: "12:00", IsActive: true},
			{ID: "schedule-3", SubjectID: "ds-2", Date: "2025-09-02", StartTime: "09:00", EndTime: "10:00", IsActive: true},
			{ID: "schedule-4", SubjectID: "os-3", Date: "2025-09-02", StartTime: "14:00", EndTime: "15:00", IsActive: true},
			{ID: "schedule-5", SubjectID: "ai-4", Date: "2025-09-03", StartTime: "10:00", EndTime: "11:00", IsActive: true},
		},
		Students: []model.Student{
			{ID: "1", RollNumber: "CSE2021001", Name: "John Doe", Year: 1, Department: "CSE"},
			{ID: "2", RollNumber: "CSE2020001", Name: "Jane Smith", Year: 2, Department: "CSE"},
			{ID: "3", RollNumber: "CSE2019001", Name: "Bob Johnson", Year: 3, Department: "CSE"},
			{ID: "4", RollNumber: "CSE2018001", Name: "Alice Brown", Year: 4, Department: "CSE"},
		},
		Admin: model.AdminCredentials{Username: "admin", Password: "admin123"},
	}
}

func defaultSubjects() []model.Subject {
	return []model.Subject{
		{
			ID:              "c-prog-1",
			Name:            "C Programming",
			Year:            1,
			DurationMinutes: 60,
			TotalMarks:      50,
			Questions: []model.Question{
				q("c1", "Which of the following is the correct syntax for declaring a variable in C?", 0, 5, "int x;", "integer x;", "var x;", "x: int;"),
				q("c2", "What is the output of printf(\"%d\", 5/2) in C?", 1, 5, "2.5", "2", "3", "Error"),
				q("c3", "Which header file is required for using printf() function?", 1, 5, "<stdlib.h>", "<stdio.h>", "<string.h>", "<math.h>"),
				q("c4", "What is the size of int data type in C (typically)?", 1, 5, "2 bytes", "4 bytes", "8 bytes", "1 byte"),
				q("c5", "Which operator is used to access the address of a variable?", 1, 5, "*", "&", "%", "#"),
				q("c6", "What is the correct way to declare a pointer in C?", 1, 5, "int ptr;", "int *ptr;", "int &ptr;", "pointer int ptr;"),
				q("c7", "Which loop executes at least once?", 2, 5, "for loop", "while loop", "do-while loop", "nested loop"),
				q("c8", "What is the correct syntax for a for loop in C?", 0, 5, "for(i=0; i<10; i++)", "for i=0 to 10", "for(i=0, i<10, i++)", "for i in range(10)"),
				q("c9", "Which function is used to allocate memory dynamically in C?", 1, 5, "alloc()", "malloc()", "memory()", "new()"),
				q("c10", "What does the break statement do in a loop?", 1, 5, "Continues to next iteration", "Exits the loop", "Pauses the loop", "Restarts the loop"),
			},
		},
		{
			ID:              "math-1",
			Name:            "Mathematics",
			Year:            1,
			DurationMinutes: 60,
			TotalMarks:      50,
			Questions: []model.Question{
				q("m1", "What is the derivative of x²?", 1, 5, "x", "2x", "x²", "2x²"),
				q("m2", "What is the integral of 2x?", 1, 5, "x²", "x² + C", "2x²", "2x² + C"),
				q("m3", "What is the value of sin(90°)?", 1, 5, "0", "1", "-1", "0.5"),
				q("m4", "What is the value of log₁₀(100)?", 1, 5, "1", "2", "10", "100"),
				q("m5", "What is the determinant of a 2x2 matrix [[a,b],[c,d]]?", 1, 5, "a+d-b-c", "ad-bc", "ac-bd", "ab-cd"),
				q("m6", "What is the sum of first n natural numbers?", 1, 5, "n(n+1)", "n(n+1)/2", "n²", "n(n-1)/2"),
				q("m7", "What is the value of e (Euler's number) approximately?", 0, 5, "2.718", "3.14", "1.414", "1.732"),
				q("m8", "What is the formula for the area of a circle?", 1, 5, "2πr", "πr²", "πr", "2πr²"),
				q("m9", "What is the value of cos(0°)?", 1, 5, "0", "1", "-1", "0.5"),
				q("m10", "What is the slope of a line passing through points (0,0) and (1,1)?", 1, 5, "0", "1", "2", "undefined"),
			},
		},
		{
			ID:              "ds-2",
			Name:            "Data Structures",
			Year:            2,
			DurationMinutes: 60,
			TotalMarks:      50,
			Questions: []model.Question{
				q("ds1", "Which data structure follows LIFO principle?", 1, 5, "Queue", "Stack", "Array", "Linked List"),
				q("ds2", "What is the time complexity of binary search?", 1, 5, "O(n)", "O(log n)", "O(n²)", "O(1)"),
				q("ds3", "In a binary tree, what is the maximum number of nodes at level k?", 0, 5, "2^k", "2^(k-1)", "2^(k+1)", "k^2"),
				q("ds4", "Which traversal of binary tree gives sorted order in BST?", 1, 5, "Preorder", "Inorder", "Postorder", "Level order"),
				q("ds5", "What is the worst-case time complexity of quicksort?", 1, 5, "O(n log n)", "O(n²)", "O(n)", "O(log n)"),
				q("ds6", "Which data structure is used for BFS traversal?", 1, 5, "Stack", "Queue", "Array", "Tree"),
				q("ds7", "What is a hash collision?", 1, 5, "When hash function fails", "When two keys map to same index", "When hash table is full", "When key is not found"),
				q("ds8", "Which sorting algorithm is stable?", 2, 5, "Quick sort", "Heap sort", "Merge sort", "Selection sort"),
				q("ds9", "What is the space complexity of recursive fibonacci?", 1, 5, "O(1)", "O(n)", "O(log n)", "O(n²)"),
				q("ds10", "In a circular queue, how do you check if it's full?", 1, 5, "front == rear", "(rear + 1) % size == front", "rear == size - 1", "front == 0"),
			},
		},
		{
			ID:              "os-3",
			Name:            "Operating Systems",
			Year:            3,
			DurationMinutes: 60,
			TotalMarks:      50,
			Questions: []model.Question{
				q("os1", "What is a process?", 0, 5, "A program in execution", "A compiled program", "A system call", "A memory location"),
				q("os2", "Which scheduling algorithm gives minimum average waiting time?", 1, 5, "FCFS", "SJF", "Round Robin", "Priority"),
				q("os3", "What is deadlock?", 2, 5, "Process termination", "Infinite loop", "Circular wait for resources", "Memory overflow"),
				q("os4", "Which memory management technique eliminates external fragmentation?", 0, 5, "Paging", "Segmentation", "Contiguous allocation", "Dynamic allocation"),
				q("os5", "What is the purpose of system calls?", 0, 5, "Interface between user and kernel", "Memory allocation", "Process scheduling", "File compression"),
				q("os6", "Which page replacement algorithm is optimal?", 2, 5, "FIFO", "LRU", "Optimal", "Clock"),
				q("os7", "What is thrashing?", 1, 5, "High CPU utilization", "Excessive paging activity", "Process synchronization", "Memory leak"),
				q("os8", "Which IPC mechanism is fastest?", 2, 5, "Pipes", "Message queues", "Shared memory", "Sockets"),
				q("os9", "What is the banker's algorithm used for?", 1, 5, "Process scheduling", "Deadlock avoidance", "Memory management", "File allocation"),
				q("os10", "What is a semaphore?", 1, 5, "A scheduling algorithm", "A synchronization primitive", "A memory location", "A system call"),
			},
		},
		{
			ID:              "ai-4",
			Name:            "Artificial Intelligence",
			Year:            4,
			DurationMinutes: 60,
			TotalMarks:      50,
			Questions: []model.Question{
				q("ai1", "What is the goal of artificial intelligence?", 1, 5, "Replace humans", "Simulate human intelligence", "Increase processing speed", "Reduce memory usage"),
				q("ai2", "Which search algorithm is complete and optimal?", 2, 5, "DFS", "BFS", "A*", "Greedy"),
				q("ai3", "What is machine learning?", 1, 5, "Programming computers", "Learning from data", "Hardware optimization", "Network protocols"),
				q("ai4", "Which is a supervised learning algorithm?", 1, 5, "K-means", "Linear regression", "DBSCAN", "PCA"),
				q("ai5", "What is overfitting in machine learning?", 0, 5, "Model performs well on training data only", "Model is too simple", "Model has no parameters", "Model is very fast"),
				q("ai6", "What is a neural network?", 1, 5, "Computer network", "Brain simulation model", "Database system", "Operating system"),
				q("ai7", "What is the purpose of activation function?", 1, 5, "Speed up training", "Introduce non-linearity", "Reduce memory", "Prevent errors"),
				q("ai8", "What is backpropagation?", 1, 5, "Forward pass algorithm", "Weight update algorithm", "Data preprocessing", "Model evaluation"),
				q("ai9", "What is cross-validation used for?", 1, 5, "Data cleaning", "Model evaluation", "Feature selection", "Data visualization"),
				q("ai10", "What is the difference between AI and ML?", 1, 5, "No difference", "AI is broader concept, ML is subset", "ML is broader", "They are opposite"),
			},
		},
	}
}
